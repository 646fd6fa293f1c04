// Package testutil boots a migrated SQLite database for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"audioshop/internal/domain/model"
	"audioshop/internal/infra/db"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDBはテストごとに別ファイルのSQLiteを作り、本番と同じマイグレーションを流す
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := db.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, email string) model.User {
	t.Helper()

	u := model.User{Email: email, FirstName: "Test", LastName: "User"}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price string, category model.Category) model.Product {
	t.Helper()

	p := model.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Features: pq.StringArray{},
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func CreateOrder(t *testing.T, gdb *gorm.DB, userID int64, status model.OrderStatus, lines ...model.OrderLine) model.Order {
	t.Helper()

	o := model.Order{UserID: userID, Status: status}
	require.NoError(t, gdb.Create(&o).Error)
	for i := range lines {
		lines[i].OrderID = o.ID
		require.NoError(t, gdb.Create(&lines[i]).Error, fmt.Sprintf("line %d", i))
	}
	return o
}

func Count(t *testing.T, gdb *gorm.DB, table string, where string, args ...any) int64 {
	t.Helper()

	var n int64
	q := gdb.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
