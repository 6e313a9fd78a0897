package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"westernpos/m/internal/database"
	"westernpos/m/internal/migrations"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Apply(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestLoadProducts(t *testing.T) {
	db := openDB(t)

	path := filepath.Join(t.TempDir(), "catalog.csv")
	csv := "name,quantity,cost_price,selling_price\n" +
		"Panadol,10,80,100\n" +
		"Vitamin C,4,45.5,50\n" +
		",3,1,2\n" +
		"Broken,-1,1,2\n" +
		"Bad price,1,x,2\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if n := LoadProducts(db, path); n != 2 {
		t.Fatalf("expected 2 rows inserted, got %d", n)
	}
	// Loading again ignores existing names.
	if n := LoadProducts(db, path); n != 0 {
		t.Errorf("expected 0 rows on reload, got %d", n)
	}

	var qty int64
	if err := db.Get(&qty, `SELECT quantity FROM product WHERE name = 'Vitamin C'`); err != nil {
		t.Fatalf("query product: %v", err)
	}
	if qty != 4 {
		t.Errorf("expected quantity 4, got %d", qty)
	}
}

func TestLoadProducts_MissingFile(t *testing.T) {
	db := openDB(t)
	if n := LoadProducts(db, filepath.Join(t.TempDir(), "missing.csv")); n != 0 {
		t.Errorf("expected 0 rows for a missing file, got %d", n)
	}
}

func TestEnsureOperator(t *testing.T) {
	db := openDB(t)

	if err := EnsureOperator(db, "Ada", "Ada", "secret"); err != nil {
		t.Fatalf("EnsureOperator failed: %v", err)
	}
	if err := EnsureOperator(db, "Other", "other", "secret"); err != nil {
		t.Fatalf("second EnsureOperator failed: %v", err)
	}

	var rows []struct {
		Username string `db:"username"`
		Password string `db:"password"`
		IsAdmin  bool   `db:"is_admin"`
	}
	if err := db.Select(&rows, `SELECT username, password, is_admin FROM auth`); err != nil {
		t.Fatalf("select operators: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one operator, got %d", len(rows))
	}
	if rows[0].Username != "ada" || !rows[0].IsAdmin {
		t.Errorf("unexpected operator %+v", rows[0])
	}
	if bcrypt.CompareHashAndPassword([]byte(rows[0].Password), []byte("secret")) != nil {
		t.Error("stored password does not match")
	}
}
