package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"audioshop/internal/aggregate"
	"audioshop/internal/apperr"
	"audioshop/internal/domain/model"
	"audioshop/internal/events"
	repo "audioshop/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const defaultTopSellingLimit = 5

type ProductUsecase struct {
	tx          repo.TransactionManager
	products    repo.ProductRepository
	accessories repo.AccessoryRepository
	events      events.Publisher
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	accessories repo.AccessoryRepository,
	publisher events.Publisher,
) *ProductUsecase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ProductUsecase{
		tx:          tx,
		products:    products,
		accessories: accessories,
		events:      publisher,
	}
}

type AccessoryInput struct {
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

// POST /productsの入力DTO
type CreateProductInput struct {
	Name        string           `json:"product_name"`
	Price       decimal.Decimal  `json:"price"`
	Category    string           `json:"category"`
	Description *string          `json:"product_desc"`
	Features    []string         `json:"features"`
	Accessories []AccessoryInput `json:"accessories"`
}

func (u *ProductUsecase) List(ctx context.Context) ([]model.Product, error) {
	items, err := u.products.List(ctx)
	if err != nil {
		return []model.Product{}, dbError(ctx, "product.list", err)
	}
	return u.withAccessories(ctx, items)
}

// 無ければnil（エラーではない）
func (u *ProductUsecase) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, apperr.Validation("invalid product id")
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError(ctx, "product.get", err)
	}

	items, err := u.withAccessories(ctx, []model.Product{p})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (u *ProductUsecase) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	c := model.Category(category)
	if !c.Valid() {
		return []model.Product{}, apperr.Validation("Invalid category")
	}

	items, err := u.products.ListByCategory(ctx, c)
	if err != nil {
		return []model.Product{}, dbError(ctx, "product.list_by_category", err)
	}
	return u.withAccessories(ctx, items)
}

// 売れた数量の多い順。limitが0以下なら5件
func (u *ProductUsecase) GetTopSelling(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultTopSellingLimit
	}

	items, err := u.products.ListTopSelling(ctx, limit)
	if err != nil {
		return []model.Product{}, dbError(ctx, "product.top_selling", err)
	}
	return u.withAccessories(ctx, items)
}

// 商品と付属品を同じTxで作る。付属品が1つでも失敗したら商品も残らない
func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, apperr.Validation("product_name is required")
	}
	if err := validatePrice(in.Price); err != nil {
		return model.Product{}, err
	}
	c := model.Category(in.Category)
	if !c.Valid() {
		return model.Product{}, apperr.Validation("Invalid category")
	}
	accs := make([]model.Accessory, 0, len(in.Accessories))
	for _, a := range in.Accessories {
		if strings.TrimSpace(a.ItemName) == "" {
			return model.Product{}, apperr.Validation("item_name is required")
		}
		if a.Quantity <= 0 {
			return model.Product{}, apperr.Validation("accessory quantity must be > 0")
		}
		accs = append(accs, model.Accessory{ItemName: strings.TrimSpace(a.ItemName), Quantity: a.Quantity})
	}
	features := pq.StringArray(in.Features)
	if features == nil {
		features = pq.StringArray{}
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:        name,
			Price:       in.Price,
			Category:    c,
			Description: in.Description,
			Features:    features,
		})
		if err != nil {
			return productWriteError(ctx, "product.create", err)
		}

		created, err := r.Accessories().CreateBulk(ctx, p.ID, accs)
		if err != nil {
			if errors.Is(err, repo.ErrCheckViolation) {
				return apperr.Validation("accessory quantity must be > 0")
			}
			return dbError(ctx, "product.create_accessories", err)
		}
		p.Accessories = created
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, txError(ctx, "product.create", err)
	}

	publish(ctx, u.events, events.TopicProducts, productKey(out.ID), events.New(events.ProductCreated, map[string]any{
		"product_id": out.ID,
		"category":   out.Category,
		"price":      out.Price.String(),
	}))
	return out, nil
}

// 部分更新。パッチに入っている項目だけ検証して書く
func (u *ProductUsecase) Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, apperr.Validation("invalid product id")
	}
	if patch.IsEmpty() {
		return model.Product{}, apperr.Validation("no updatable fields")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Product{}, apperr.Validation("product_name is required")
		}
		patch.Name = &name
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return model.Product{}, err
		}
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return model.Product{}, apperr.Validation("Invalid category")
	}

	err := u.products.Update(ctx, id, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return model.Product{}, productWriteError(ctx, "product.update", err)
	}

	p, err := u.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if p == nil {
		//更新直後に別リクエストで消された
		return model.Product{}, apperr.NotFound("product not found")
	}

	publish(ctx, u.events, events.TopicProducts, productKey(id), events.New(events.ProductUpdated, map[string]any{
		"product_id": id,
		"fields":     patchFields(patch),
	}))
	return *p, nil
}

// 付属品と注文明細はCASCADEで消える
func (u *ProductUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Validation("invalid product id")
	}

	err := u.products.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound("product not found")
	}
	if err != nil {
		return dbError(ctx, "product.delete", err)
	}

	publish(ctx, u.events, events.TopicProducts, productKey(id), events.New(events.ProductDeleted, map[string]any{
		"product_id": id,
	}))
	return nil
}

// 付属品は商品IDの一覧で1回だけ取る
func (u *ProductUsecase) withAccessories(ctx context.Context, items []model.Product) ([]model.Product, error) {
	ids := aggregate.Keys(items, func(p model.Product) int64 { return p.ID })
	accs, err := u.accessories.ListByProductIDs(ctx, ids)
	if err != nil {
		return []model.Product{}, dbError(ctx, "product.list_accessories", err)
	}
	aggregate.Fold(items, accs,
		func(p model.Product) int64 { return p.ID },
		func(p *model.Product, as []model.Accessory) { p.Accessories = as },
	)
	return items, nil
}

// NUMERIC(10,2)に収まる値だけ通す
var maxPrice = decimal.New(1, 8)

const priceMessage = "price must be > 0 with at most 2 decimals"

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() || price.GreaterThanOrEqual(maxPrice) {
		return apperr.Validation(priceMessage)
	}
	if !price.Equal(price.Truncate(2)) {
		return apperr.Validation(priceMessage)
	}
	return nil
}

func productWriteError(ctx context.Context, op string, err error) error {
	if errors.Is(err, repo.ErrCheckViolation) {
		return apperr.Validation("invalid product fields")
	}
	return dbError(ctx, op, err)
}

func patchFields(p model.ProductPatch) []string {
	cols := p.Columns()
	out := make([]string, 0, len(cols))
	for _, k := range []string{"product_name", "price", "category", "product_desc", "features"} {
		if _, ok := cols[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func productKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
