package repository

import (
	"context"

	"audioshop/internal/aggregate"
	"audioshop/internal/domain/model"
	repo "audioshop/internal/repository"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 全商品（id昇順）
func (r *ProductGormRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return []model.Product{}, translate(err)
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *ProductGormRepository) ListByCategory(ctx context.Context, category model.Category) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, translate(err)
	}
	return products, nil
}

// 注文明細の数量合計の多い順。LEFT JOINなので売上0の商品も合計0で並ぶ。
// 同数はid昇順
func (r *ProductGormRepository) ListTopSelling(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Table("products AS p").
		Select("p.*").
		Joins("LEFT JOIN order_products AS op ON op.product_id = p.id").
		Group("p.id").
		Order("COALESCE(SUM(op.quantity), 0) DESC").
		Order("p.id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return []model.Product{}, translate(err)
	}
	return products, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if p.Features == nil {
		p.Features = pq.StringArray{}
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// パッチに入っているカラムだけ更新
func (r *ProductGormRepository) Update(ctx context.Context, id int64, patch model.ProductPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除。付属品・注文明細は外部キーのCASCADEで消える
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type AccessoryGormRepository struct {
	db *gorm.DB
}

func NewAccessoryGormRepository(db *gorm.DB) *AccessoryGormRepository {
	return &AccessoryGormRepository{db: db}
}

func (r *AccessoryGormRepository) CreateBulk(ctx context.Context, productID int64, items []model.Accessory) ([]model.Accessory, error) {
	if len(items) == 0 {
		return []model.Accessory{}, nil
	}
	rows := make([]model.Accessory, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].ProductID = productID
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// 付属品を1クエリで取って商品IDごとにまとめる
func (r *AccessoryGormRepository) ListByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]model.Accessory, error) {
	if len(productIDs) == 0 {
		return map[int64][]model.Accessory{}, nil
	}
	var rows []model.Accessory
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return aggregate.GroupBy(rows, func(a model.Accessory) int64 { return a.ProductID }), nil
}
