// Package dbtest opens isolated in-memory sqlite databases carrying the
// LocalDrop schema for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/pkg/db"
)

var seq atomic.Int64

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'user',
		phone TEXT,
		address TEXT,
		delivered_coin INTEGER NOT NULL DEFAULT 0,
		shop_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE shops (
		id TEXT PRIMARY KEY,
		shop_name TEXT NOT NULL,
		local_areas TEXT NOT NULL DEFAULT '{}',
		area_index TEXT NOT NULL DEFAULT '',
		permanent_address TEXT NOT NULL,
		shop_category TEXT NOT NULL,
		additional_info TEXT,
		owner_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		contact_number TEXT NOT NULL,
		bkash_number TEXT,
		nagad_number TEXT,
		shop_pin INTEGER NOT NULL UNIQUE,
		delivery_count INTEGER NOT NULL DEFAULT 0,
		total_sell_price NUMERIC NOT NULL DEFAULT 0,
		sell_days INTEGER NOT NULL DEFAULT 1,
		is_open BOOLEAN NOT NULL DEFAULT 1,
		is_block BOOLEAN NOT NULL DEFAULT 0,
		last_reset_date DATETIME,
		delivery_charge TEXT NOT NULL DEFAULT '[]',
		self_delivery BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE food_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		price NUMERIC NOT NULL,
		category TEXT NOT NULL,
		image TEXT,
		shop_id TEXT NOT NULL,
		local_areas TEXT NOT NULL DEFAULT '{}',
		area_index TEXT NOT NULL DEFAULT '',
		is_available BOOLEAN NOT NULL DEFAULT 1,
		preparation_time INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE deliveries (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'pending',
		shop_id TEXT NOT NULL,
		user_id TEXT,
		guest_key TEXT,
		items TEXT NOT NULL DEFAULT '[]',
		university_or_village TEXT NOT NULL,
		hall_or_moholla TEXT NOT NULL,
		room_or_identity TEXT NOT NULL,
		contact_number INTEGER NOT NULL,
		delivery_date DATETIME NOT NULL,
		delivery_time TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		payment_amount NUMERIC NOT NULL,
		payment_number INTEGER NOT NULL,
		transaction_id TEXT NOT NULL,
		delivery_pin INTEGER,
		delivery_man_id TEXT,
		self_delivery BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		delivered_at DATETIME,
		verified_at DATETIME
	)`,
	`CREATE TABLE delivery_man_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT NOT NULL,
		work_area TEXT NOT NULL,
		age INTEGER NOT NULL,
		profession TEXT NOT NULL,
		vehicle_type TEXT NOT NULL DEFAULT 'bicycle',
		experience INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
}

// New returns a fresh database private to the calling test.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

// NewClient wraps New in the shared db.Client used by services.
func NewClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := New(t)
	return db.Wrap(conn), conn
}
