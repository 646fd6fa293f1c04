package model

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryHeadphones Category = "headphones"
	CategorySpeakers   Category = "speakers"
	CategoryEarphones  Category = "earphones"
)

// 3種類以外はfalse
func (c Category) Valid() bool {
	switch c {
	case CategoryHeadphones, CategorySpeakers, CategoryEarphones:
		return true
	}
	return false
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Category    Category        `gorm:"type:varchar(20);not null;index" json:"category"`
	Description *string         `gorm:"column:product_desc;type:text" json:"product_desc"`
	Features    pq.StringArray  `gorm:"type:text[];not null" json:"features"`

	//product_accessoriesから後で詰める
	Accessories []Accessory `gorm:"-" json:"accessories"`
}

// 商品の付属品。商品と一緒にしか作られない
type Accessory struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	ItemName  string `gorm:"type:varchar(255);not null" json:"item_name"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
}

func (Accessory) TableName() string { return "product_accessories" }

// 部分更新。nilのフィールドは変更しない
type ProductPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Category    *Category
	Description *string
	Features    *[]string
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil && p.Description == nil && p.Features == nil
}

// UPDATEに渡すカラム
func (p ProductPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["product_name"] = *p.Name
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Description != nil {
		cols["product_desc"] = *p.Description
	}
	if p.Features != nil {
		cols["features"] = pq.StringArray(*p.Features)
	}
	return cols
}
