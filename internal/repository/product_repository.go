package repository

import (
	"audioshop/internal/domain/model"
	"context"
	"errors"
)

// 永続化層の共通エラー。usecaseでapperrに変換する
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("duplicate key")
	ErrForeignKey     = errors.New("foreign key violation")
	ErrCheckViolation = errors.New("check constraint violation")
)

// 商品の永続化（保存・取得）だけを約束。
// 返すProductのAccessoriesは空のまま。付属品はAccessoryRepositoryで取る
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	ListByCategory(ctx context.Context, category model.Category) ([]model.Product, error)

	//注文数量の合計が多い順。売上0の商品も含む
	ListTopSelling(ctx context.Context, limit int) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, id int64, patch model.ProductPatch) error
	Delete(ctx context.Context, id int64) error
}

type AccessoryRepository interface {
	CreateBulk(ctx context.Context, productID int64, items []model.Accessory) ([]model.Accessory, error)

	//複数商品の付属品を1クエリで取得し、商品IDごとにまとめて返す
	ListByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]model.Accessory, error)
}
