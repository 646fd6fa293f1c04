package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"audioshop/internal/aggregate"
	"audioshop/internal/apperr"
	"audioshop/internal/domain/model"
	"audioshop/internal/events"
	repo "audioshop/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	lines  repo.OrderLineRepository
	events events.Publisher
}

// DI。publisherがnilならイベントは送らない
func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, lines repo.OrderLineRepository, publisher events.Publisher) *OrderUsecase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &OrderUsecase{tx: tx, orders: orders, lines: lines, events: publisher}
}

type LineInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type OrderProductOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"product_name"`
	Price     decimal.Decimal `json:"price"`
	Category  model.Category  `json:"category"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID        int64                `json:"id"`
	UserID    int64                `json:"user_id"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	Products  []OrderProductOutput `json:"products"`
}

// 注文作成。初期明細があれば同じTxで入れる
func (u *OrderUsecase) Create(ctx context.Context, userID int64, lines []LineInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, apperr.Validation("invalid user_id")
	}
	rows := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		if err := validateLine(l.ProductID, l.Quantity); err != nil {
			return OrderOutput{}, err
		}
		rows = append(rows, model.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().Create(ctx, model.Order{UserID: userID, Status: model.OrderStatusActive})
		if errors.Is(err, repo.ErrForeignKey) {
			return apperr.NotFound("user not found")
		}
		if err != nil {
			return dbError(ctx, "order.create", err)
		}

		if _, err := r.OrderLines().CreateBulk(ctx, o.ID, rows); err != nil {
			return lineWriteError(ctx, "order.create_lines", err)
		}

		products, err := r.OrderLines().ListProductsByOrderIDs(ctx, []int64{o.ID})
		if err != nil {
			return dbError(ctx, "order.list_products", err)
		}
		out = foldOrders([]model.Order{o}, products)[0]
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError(ctx, "order.create", err)
	}

	publish(ctx, u.events, events.TopicOrders, orderKey(out.ID), events.New(events.OrderCreated, map[string]any{
		"order_id": out.ID,
		"user_id":  out.UserID,
		"status":   out.Status,
	}))
	return out, nil
}

// 明細追加。注文をロックしてからstatusを確認し、activeの時だけ書く
func (u *OrderUsecase) AddLine(ctx context.Context, orderID int64, productID int64, qty int64) (model.OrderLine, error) {
	if orderID <= 0 {
		return model.OrderLine{}, apperr.Validation("invalid order id")
	}
	if err := validateLine(productID, qty); err != nil {
		return model.OrderLine{}, err
	}

	var line model.OrderLine
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockActiveOrder(ctx, r, orderID); err != nil {
			return err
		}

		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("product not found")
			}
			return dbError(ctx, "order.add_line.find_product", err)
		}

		_, err := r.OrderLines().FindByOrderAndProduct(ctx, orderID, productID)
		if err == nil {
			return apperr.Conflict("product already in order")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return dbError(ctx, "order.add_line.find_line", err)
		}

		created, err := r.OrderLines().Create(ctx, model.OrderLine{OrderID: orderID, ProductID: productID, Quantity: qty})
		if err != nil {
			return lineWriteError(ctx, "order.add_line", err)
		}
		line = created
		return nil
	})
	if err != nil {
		return model.OrderLine{}, txError(ctx, "order.add_line", err)
	}
	return line, nil
}

// 一番新しいactiveな注文。無ければnil
func (u *OrderUsecase) GetCurrent(ctx context.Context, userID int64) (*OrderOutput, error) {
	if userID <= 0 {
		return nil, apperr.Validation("invalid user_id")
	}

	o, err := u.orders.FindLatestByUserAndStatus(ctx, userID, model.OrderStatusActive)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError(ctx, "order.get_current", err)
	}

	outs, err := u.withProducts(ctx, []model.Order{o})
	if err != nil {
		return nil, err
	}
	return &outs[0], nil
}

// completeの注文一覧（新しい順）。無ければ空スライス
func (u *OrderUsecase) GetCompleted(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, apperr.Validation("invalid user_id")
	}

	orders, err := u.orders.ListByUserAndStatus(ctx, userID, model.OrderStatusComplete)
	if err != nil {
		return []OrderOutput{}, dbError(ctx, "order.get_completed", err)
	}
	return u.withProducts(ctx, orders)
}

func (u *OrderUsecase) GetByID(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, apperr.Validation("invalid order id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, apperr.NotFound("order not found")
	}
	if err != nil {
		return OrderOutput{}, dbError(ctx, "order.get", err)
	}

	outs, err := u.withProducts(ctx, []model.Order{o})
	if err != nil {
		return OrderOutput{}, err
	}
	return outs[0], nil
}

// statusの上書き。complete→activeも許す
func (u *OrderUsecase) UpdateStatus(ctx context.Context, orderID int64, status string) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, apperr.Validation("invalid order id")
	}
	s := model.OrderStatus(status)
	if !s.Valid() {
		return OrderOutput{}, apperr.Validation("invalid status")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().UpdateStatus(ctx, orderID, s)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order not found")
		}
		if err != nil {
			return dbError(ctx, "order.update_status", err)
		}

		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return dbError(ctx, "order.update_status.reload", err)
		}
		products, err := r.OrderLines().ListProductsByOrderIDs(ctx, []int64{orderID})
		if err != nil {
			return dbError(ctx, "order.list_products", err)
		}
		out = foldOrders([]model.Order{o}, products)[0]
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError(ctx, "order.update_status", err)
	}

	publish(ctx, u.events, events.TopicOrders, orderKey(orderID), events.New(events.OrderStatusChanged, map[string]any{
		"order_id": orderID,
		"user_id":  out.UserID,
		"status":   out.Status,
	}))
	return out, nil
}

func (u *OrderUsecase) UpdateLineQuantity(ctx context.Context, orderID int64, productID int64, qty int64) (model.OrderLine, error) {
	if orderID <= 0 {
		return model.OrderLine{}, apperr.Validation("invalid order id")
	}
	if err := validateLine(productID, qty); err != nil {
		return model.OrderLine{}, err
	}

	var line model.OrderLine
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockActiveOrder(ctx, r, orderID); err != nil {
			return err
		}

		err := r.OrderLines().UpdateQuantity(ctx, orderID, productID, qty)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order line not found")
		}
		if err != nil {
			return lineWriteError(ctx, "order.update_line", err)
		}

		updated, err := r.OrderLines().FindByOrderAndProduct(ctx, orderID, productID)
		if err != nil {
			return dbError(ctx, "order.update_line.reload", err)
		}
		line = updated
		return nil
	})
	if err != nil {
		return model.OrderLine{}, txError(ctx, "order.update_line", err)
	}
	return line, nil
}

func (u *OrderUsecase) RemoveLine(ctx context.Context, orderID int64, productID int64) error {
	if orderID <= 0 {
		return apperr.Validation("invalid order id")
	}
	if productID <= 0 {
		return apperr.Validation("invalid product_id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockActiveOrder(ctx, r, orderID); err != nil {
			return err
		}

		err := r.OrderLines().Delete(ctx, orderID, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("order line not found")
		}
		if err != nil {
			return dbError(ctx, "order.remove_line", err)
		}
		return nil
	})
	return txError(ctx, "order.remove_line", err)
}

// 明細はCASCADEで消える
func (u *OrderUsecase) Delete(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return apperr.Validation("invalid order id")
	}

	err := u.orders.Delete(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound("order not found")
	}
	if err != nil {
		return dbError(ctx, "order.delete", err)
	}

	publish(ctx, u.events, events.TopicOrders, orderKey(orderID), events.New(events.OrderDeleted, map[string]any{
		"order_id": orderID,
	}))
	return nil
}

// 明細の変更前に毎回呼ぶ。statusはキャッシュせずロックした行から読む
func lockActiveOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, apperr.NotFound("order not found")
	}
	if err != nil {
		return model.Order{}, dbError(ctx, "order.lock", err)
	}
	if !o.Status.Mutable() {
		return model.Order{}, apperr.Conflict("cannot modify a completed order")
	}
	return o, nil
}

func validateLine(productID int64, qty int64) error {
	if productID <= 0 {
		return apperr.Validation("invalid product_id")
	}
	if qty <= 0 {
		return apperr.Validation("quantity must be > 0")
	}
	return nil
}

// 明細INSERT/UPDATEの制約違反を業務エラーに変換
func lineWriteError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return apperr.Conflict("product already in order")
	case errors.Is(err, repo.ErrForeignKey):
		return apperr.NotFound("product not found")
	case errors.Is(err, repo.ErrCheckViolation):
		return apperr.Validation("quantity must be > 0")
	}
	return dbError(ctx, op, err)
}

// 明細は注文IDの一覧で1回だけ取ってまとめる
func (u *OrderUsecase) withProducts(ctx context.Context, orders []model.Order) ([]OrderOutput, error) {
	ids := aggregate.Keys(orders, func(o model.Order) int64 { return o.ID })
	products, err := u.lines.ListProductsByOrderIDs(ctx, ids)
	if err != nil {
		return []OrderOutput{}, dbError(ctx, "order.list_products", err)
	}
	return foldOrders(orders, products), nil
}

func foldOrders(orders []model.Order, products map[int64][]model.OrderProduct) []OrderOutput {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, OrderOutput{
			ID:        o.ID,
			UserID:    o.UserID,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt,
		})
	}
	aggregate.Fold(outs, products,
		func(o OrderOutput) int64 { return o.ID },
		func(o *OrderOutput, ps []model.OrderProduct) {
			o.Products = make([]OrderProductOutput, 0, len(ps))
			for _, p := range ps {
				o.Products = append(o.Products, OrderProductOutput{
					ProductID: p.ProductID,
					Name:      p.ProductName,
					Price:     p.Price,
					Category:  p.Category,
					Quantity:  p.Quantity,
				})
			}
		},
	)
	return outs
}

func orderKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
