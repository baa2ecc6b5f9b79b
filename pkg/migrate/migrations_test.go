package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/localdrop-backend/pkg/migrate"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := migrate.Validate(migrate.Embedded()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestDeliveriesMigrationEnforcesLifecycle(t *testing.T) {
	content := readMigration(t, "*_create_deliveries.sql")

	checks := []string{
		"CREATE TYPE delivery_status AS ENUM ('pending', 'approved', 'rejected', 'delivered')",
		"CREATE TYPE payment_method AS ENUM ('bkash', 'nagad')",
		"CREATE TABLE IF NOT EXISTS deliveries",
		"delivery_pin integer CHECK (delivery_pin BETWEEN 1000 AND 9999)",
		"CONSTRAINT deliveries_pin_matches_status",
		"CONSTRAINT deliveries_verified_matches_status",
		"CREATE INDEX IF NOT EXISTS idx_deliveries_delivered_sweep",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestShopsMigrationContainsCounters(t *testing.T) {
	content := readMigration(t, "*_create_shops.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS shops",
		"sell_days integer NOT NULL DEFAULT 1 CHECK (sell_days >= 0)",
		"delivery_count integer NOT NULL DEFAULT 0",
		"total_sell_price numeric(14,2) NOT NULL DEFAULT 0",
		"CONSTRAINT shops_shop_pin_key UNIQUE (shop_pin)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shops_owner",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCourierRequestsAllowOnePendingPerUser(t *testing.T) {
	content := readMigration(t, "*_create_delivery_man_requests.sql")
	if !strings.Contains(content, "ON delivery_man_requests (user_id) WHERE status = 'pending'") {
		t.Fatalf("expected partial unique index on pending requests")
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Shop Ratings!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_shop_ratings.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestValidateRejectsMissingDownSection(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\nCREATE TABLE ratings (id int);\n")
	if err := os.WriteFile(filepath.Join(dir, "20260401000000_add_ratings.sql"), body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected missing down section error")
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename error")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
