package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate dir: %v", err)
	}
}

func TestGroupOrderMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_group_orders")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS group_orders",
		"CHECK (target_quantity > 0)",
		"CHECK (group_price <= regular_price)",
		"version           integer NOT NULL DEFAULT 1",
		"CONSTRAINT ux_group_order_participants_vendor UNIQUE (group_order_id, vendor_id)",
		"DROP TABLE IF EXISTS group_orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_inventory_items")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventory_items",
		"FOREIGN KEY (vendor_id) REFERENCES accounts(id) ON DELETE CASCADE",
		"CHECK (current_stock >= 0)",
		"CHECK (max_capacity > 0)",
		"DROP TABLE IF EXISTS inventory_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAccountsMigrationEnforcesUniquePhone(t *testing.T) {
	content := readMigration(t, "create_accounts")
	if !strings.Contains(content, "CONSTRAINT ux_accounts_phone UNIQUE (phone)") {
		t.Fatal("expected unique phone constraint")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Supplier Ratings!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_supplier_ratings.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected error for empty sanitized name")
	}
}

func TestModelsAutoMigrateOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:automigrate?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.WithContext(context.Background()).AutoMigrate(migrate.Models()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	for _, table := range []string{"accounts", "group_orders", "group_order_participants", "inventory_items", "outbox_dlq"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
}

func TestDialectFor(t *testing.T) {
	if got := migrate.DialectFor(config.DBConfig{Driver: config.DBDriverSQLite}); got != migrate.DialectSQLite {
		t.Fatalf("expected sqlite3, got %s", got)
	}
	if got := migrate.DialectFor(config.DBConfig{}); got != migrate.DialectPostgres {
		t.Fatalf("expected postgres, got %s", got)
	}
}
