package repository

import (
	"context"

	"audioshop/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//行ロック付きで取得（トランザクション内で使う）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)

	//ステータスが一致する中で一番新しい注文
	FindLatestByUserAndStatus(ctx context.Context, userID int64, status model.OrderStatus) (model.Order, error)
	ListByUserAndStatus(ctx context.Context, userID int64, status model.OrderStatus) ([]model.Order, error)

	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	Delete(ctx context.Context, orderID int64) error
}

type OrderLineRepository interface {
	Create(ctx context.Context, line model.OrderLine) (model.OrderLine, error)
	CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) ([]model.OrderLine, error)
	FindByOrderAndProduct(ctx context.Context, orderID int64, productID int64) (model.OrderLine, error)
	UpdateQuantity(ctx context.Context, orderID int64, productID int64, qty int64) error
	Delete(ctx context.Context, orderID int64, productID int64) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error)

	//複数注文の明細を商品情報付きで1クエリ取得し、注文IDごとにまとめる
	ListProductsByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderProduct, error)
}
