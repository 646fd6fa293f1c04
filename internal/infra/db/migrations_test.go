package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })
	return gdb
}

func TestMigrate_AppliesAllAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gdb := openTestSQLite(t)

	require.NoError(t, Migrate(ctx, gdb))
	require.NoError(t, Migrate(ctx, gdb))

	v, err := CurrentVersion(ctx, gdb)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "1.1.0", v.String())

	var n int64
	require.NoError(t, gdb.Table("schema_version").Count(&n).Error)
	assert.Equal(t, int64(len(AllMigrations)), n)

	for _, table := range []string{"users", "products", "product_accessories", "orders", "order_products"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestMigrate_AppliesInVersionOrder(t *testing.T) {
	ctx := context.Background()
	gdb := openTestSQLite(t)

	//宣言順が逆でも1.0.0が先
	ms := []Migration{
		{Version: "1.10.0", SQLite: []string{`ALTER TABLE things ADD COLUMN note TEXT`}},
		{Version: "1.2.0", SQLite: []string{`CREATE TABLE things (id INTEGER PRIMARY KEY)`}},
	}
	require.NoError(t, migrate(ctx, gdb, ms))
	assert.True(t, gdb.Migrator().HasColumn("things", "note"))
}

func TestMigrate_FailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	gdb := openTestSQLite(t)

	ms := []Migration{
		{Version: "2.0.0", SQLite: []string{`CREATE TABLE ok_table (id INTEGER)`, `THIS IS NOT SQL`}},
	}
	err := migrate(ctx, gdb, ms)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2.0.0")

	v, err := CurrentVersion(ctx, gdb)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, gdb.Migrator().HasTable("ok_table"))
}

func TestMigrate_InvalidVersion(t *testing.T) {
	gdb := openTestSQLite(t)
	err := migrate(context.Background(), gdb, []Migration{{Version: "latest"}})
	assert.ErrorContains(t, err, "invalid migration version")
}

func TestOpenSQLite_ForeignKeysEnabled(t *testing.T) {
	gdb := openTestSQLite(t)

	var on int
	require.NoError(t, gdb.Raw("PRAGMA foreign_keys").Scan(&on).Error)
	assert.Equal(t, 1, on)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "", PoolConfig{})
	assert.Error(t, err)
	_, err = OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}
