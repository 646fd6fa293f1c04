package repository

import (
	"context"

	repo "audioshop/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders      repo.OrderRepository
	orderLines  repo.OrderLineRepository
	products    repo.ProductRepository
	accessories repo.AccessoryRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository          { return r.orders }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository  { return r.orderLines }
func (r *txReposGorm) Products() repo.ProductRepository      { return r.products }
func (r *txReposGorm) Accessories() repo.AccessoryRepository { return r.accessories }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがエラーかpanicならrollback。エラーは包まずにそのまま返す
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:      NewOrderGormRepository(tx),
			orderLines:  NewOrderLineGormRepository(tx),
			products:    NewProductGormRepository(tx),
			accessories: NewAccessoryGormRepository(tx),
		}
		return fn(r)
	})
}

var (
	_ repo.OrderRepository     = (*OrderGormRepository)(nil)
	_ repo.OrderLineRepository = (*OrderLineGormRepository)(nil)
	_ repo.ProductRepository   = (*ProductGormRepository)(nil)
	_ repo.AccessoryRepository = (*AccessoryGormRepository)(nil)
	_ repo.UserRepository      = (*UserGormRepository)(nil)
	_ repo.TransactionManager  = (*TxManagerGorm)(nil)
)
