package repository

import (
	"context"

	"audioshop/internal/aggregate"
	"audioshop/internal/domain/model"
	repo "audioshop/internal/repository"

	"gorm.io/gorm"
)

type OrderLineGormRepository struct {
	db *gorm.DB
}

func NewOrderLineGormRepository(db *gorm.DB) *OrderLineGormRepository {
	return &OrderLineGormRepository{db: db}
}

func (r *OrderLineGormRepository) Create(ctx context.Context, line model.OrderLine) (model.OrderLine, error) {
	if err := r.db.WithContext(ctx).Create(&line).Error; err != nil {
		return model.OrderLine{}, translate(err)
	}
	return line, nil
}

func (r *OrderLineGormRepository) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) ([]model.OrderLine, error) {
	if len(lines) == 0 {
		return []model.OrderLine{}, nil
	}
	rows := make([]model.OrderLine, len(lines))
	copy(rows, lines)
	for i := range rows {
		rows[i].OrderID = orderID
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *OrderLineGormRepository) FindByOrderAndProduct(ctx context.Context, orderID int64, productID int64) (model.OrderLine, error) {
	var l model.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Take(&l).Error
	if err != nil {
		return model.OrderLine{}, translate(err)
	}
	return l, nil
}

func (r *OrderLineGormRepository) UpdateQuantity(ctx context.Context, orderID int64, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).Model(&model.OrderLine{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderLineGormRepository) Delete(ctx context.Context, orderID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Delete(&model.OrderLine{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderLineGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	var items []model.OrderLine
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderLine{}, translate(err)
	}
	return items, nil
}

// 明細＋商品の表示用カラムをJOINで1回だけ取り、注文IDごとにまとめる
func (r *OrderLineGormRepository) ListProductsByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderProduct, error) {
	if len(orderIDs) == 0 {
		return map[int64][]model.OrderProduct{}, nil
	}
	var rows []model.OrderProduct
	err := r.db.WithContext(ctx).
		Table("order_products AS op").
		Select("op.id, op.order_id, op.product_id, op.quantity, p.product_name, p.price, p.category").
		Joins("JOIN products AS p ON p.id = op.product_id").
		Where("op.order_id IN ?", orderIDs).
		Order("op.order_id asc").
		Order("op.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return aggregate.GroupBy(rows, func(op model.OrderProduct) int64 { return op.OrderID }), nil
}
