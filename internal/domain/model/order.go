package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusActive   OrderStatus = "active"
	OrderStatusComplete OrderStatus = "complete"
)

func (s OrderStatus) Valid() bool {
	return s == OrderStatusActive || s == OrderStatusComplete
}

// 明細を追加・変更できるのはactiveのときだけ
func (s OrderStatus) Mutable() bool {
	return s == OrderStatusActive
}

type Order struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64       `gorm:"not null;index" json:"user_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 注文明細（order_products）
type OrderLine struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
}

func (OrderLine) TableName() string { return "order_products" }

// 明細にproductsの表示用カラムをJOINしたもの
type OrderProduct struct {
	ID          int64           `gorm:"column:id"`
	OrderID     int64           `gorm:"column:order_id"`
	ProductID   int64           `gorm:"column:product_id"`
	Quantity    int64           `gorm:"column:quantity"`
	ProductName string          `gorm:"column:product_name"`
	Price       decimal.Decimal `gorm:"column:price"`
	Category    Category        `gorm:"column:category"`
}
