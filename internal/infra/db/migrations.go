package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gorm.io/gorm"
)

// Migrationは1バージョン分のスキーマ変更。方言ごとにSQLを持つ
type Migration struct {
	Version  string
	Postgres []string
	SQLite   []string
}

var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				email VARCHAR(255) NOT NULL UNIQUE,
				first_name VARCHAR(100),
				last_name VARCHAR(100),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS products (
				id BIGSERIAL PRIMARY KEY,
				product_name VARCHAR(255) NOT NULL,
				price NUMERIC(10,2) NOT NULL CHECK (price > 0),
				category VARCHAR(20) NOT NULL CHECK (category IN ('headphones', 'speakers', 'earphones')),
				product_desc TEXT,
				features TEXT[] NOT NULL DEFAULT '{}'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
			`CREATE TABLE IF NOT EXISTS product_accessories (
				id BIGSERIAL PRIMARY KEY,
				product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				item_name VARCHAR(255) NOT NULL,
				quantity INTEGER NOT NULL CHECK (quantity > 0)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_product_accessories_product ON product_accessories(product_id)`,
			`CREATE TABLE IF NOT EXISTS orders (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'complete')),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)`,
			`CREATE TABLE IF NOT EXISTS order_products (
				id BIGSERIAL PRIMARY KEY,
				order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
				product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				quantity INTEGER NOT NULL CHECK (quantity > 0)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_order_products_order ON order_products(order_id)`,
			`CREATE INDEX IF NOT EXISTS idx_order_products_product ON order_products(product_id)`,
		},
		SQLite: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE,
				first_name TEXT,
				last_name TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS products (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				product_name TEXT NOT NULL,
				price NUMERIC NOT NULL CHECK (price > 0),
				category TEXT NOT NULL CHECK (category IN ('headphones', 'speakers', 'earphones')),
				product_desc TEXT,
				features TEXT NOT NULL DEFAULT '{}'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
			`CREATE TABLE IF NOT EXISTS product_accessories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				item_name TEXT NOT NULL,
				quantity INTEGER NOT NULL CHECK (quantity > 0)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_product_accessories_product ON product_accessories(product_id)`,
			`CREATE TABLE IF NOT EXISTS orders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'complete')),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)`,
			`CREATE TABLE IF NOT EXISTS order_products (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
				product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				quantity INTEGER NOT NULL CHECK (quantity > 0)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_order_products_order ON order_products(order_id)`,
			`CREATE INDEX IF NOT EXISTS idx_order_products_product ON order_products(product_id)`,
		},
	},
	{
		//同じ注文に同じ商品の明細は1行だけ
		Version: "1.1.0",
		Postgres: []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_order_products_order_product ON order_products(order_id, product_id)`,
		},
		SQLite: []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_order_products_order_product ON order_products(order_id, product_id)`,
		},
	},
}

const createSchemaVersion = `CREATE TABLE IF NOT EXISTS schema_version (
	version VARCHAR(32) PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// Migrateは未適用のマイグレーションをバージョン順に1つずつTxで流す
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	return migrate(ctx, gdb, AllMigrations)
}

func migrate(ctx context.Context, gdb *gorm.DB, migrations []Migration) error {
	dialect := gdb.Dialector.Name()
	db := gdb.WithContext(ctx)

	if err := db.Exec(createSchemaVersion).Error; err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var applied []string
	if err := db.Table("schema_version").Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	sorted, err := sortMigrations(migrations)
	if err != nil {
		return err
	}

	for _, m := range sorted {
		if done[m.Version] {
			continue
		}
		stmts, err := m.statements(dialect)
		if err != nil {
			return err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			for _, s := range stmts {
				if err := tx.Exec(s).Error; err != nil {
					return err
				}
			}
			return tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", m.Version, err)
		}
	}
	return nil
}

// CurrentVersionは適用済みの最新バージョン。未適用ならnil
func CurrentVersion(ctx context.Context, gdb *gorm.DB) (*semver.Version, error) {
	var applied []string
	if err := gdb.WithContext(ctx).Table("schema_version").Pluck("version", &applied).Error; err != nil {
		return nil, err
	}
	var current *semver.Version
	for _, v := range applied {
		sv, err := semver.NewVersion(v)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %q: %w", v, err)
		}
		if current == nil || sv.GreaterThan(current) {
			current = sv
		}
	}
	return current, nil
}

func sortMigrations(migrations []Migration) ([]Migration, error) {
	type versioned struct {
		v *semver.Version
		m Migration
	}
	vs := make([]versioned, 0, len(migrations))
	for _, m := range migrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version %q: %w", m.Version, err)
		}
		vs = append(vs, versioned{v: v, m: m})
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].v.LessThan(vs[j].v) })

	out := make([]Migration, 0, len(vs))
	for _, x := range vs {
		out = append(out, x.m)
	}
	return out, nil
}

func (m Migration) statements(dialect string) ([]string, error) {
	switch dialect {
	case "postgres":
		return m.Postgres, nil
	case "sqlite":
		return m.SQLite, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", dialect)
}
