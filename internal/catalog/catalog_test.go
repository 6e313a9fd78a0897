package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"westernpos/m/internal/apperror"
	"westernpos/m/internal/database"
	"westernpos/m/internal/migrations"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Apply(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_, err = db.Exec(`INSERT INTO product (name, quantity, cost_price, selling_price, is_deleted) VALUES
		('Panadol', 10, 80, 100, 0),
		('Vitamin C', 4, 45.5, 50, 0),
		('Old Stock', 2, 1, 2, 1),
		('Amoxil', 7, 300, 350, 0)`)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return db
}

func TestListActiveProductNames(t *testing.T) {
	c := New(openDB(t))

	names, err := c.ListActiveProductNames(context.Background())
	if err != nil {
		t.Fatalf("ListActiveProductNames failed: %v", err)
	}
	want := []string{"Amoxil", "Panadol", "Vitamin C"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestGetProductDetails(t *testing.T) {
	c := New(openDB(t))

	p, err := c.GetProductDetails(context.Background(), "Vitamin C")
	if err != nil {
		t.Fatalf("GetProductDetails failed: %v", err)
	}
	if p.ID == 0 || p.Quantity != 4 {
		t.Errorf("unexpected product %+v", p)
	}
	if !p.CostPrice.Equal(decimal.RequireFromString("45.5")) || !p.SellingPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unexpected prices cost=%s selling=%s", p.CostPrice, p.SellingPrice)
	}
	if !p.Revenue().Equal(decimal.RequireFromString("4.5")) {
		t.Errorf("expected revenue 4.5, got %s", p.Revenue())
	}
}

func TestGetProductDetails_Fallback(t *testing.T) {
	c := New(openDB(t))

	for _, name := range []string{"Missing", "Old Stock"} {
		p, err := c.GetProductDetails(context.Background(), name)
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("%s: expected not found, got %v", name, err)
		}
		if p.Quantity != 0 || !p.SellingPrice.IsZero() || p.Sellable() {
			t.Errorf("%s: expected zero-valued fallback, got %+v", name, p)
		}
	}
}

func TestGetProductDetails_StorageError(t *testing.T) {
	db := openDB(t)
	c := New(db)
	db.Close()

	p, err := c.GetProductDetails(context.Background(), "Panadol")
	if !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
	if p.Sellable() {
		t.Error("fallback product must not be sellable")
	}
}

func TestIndex_Search(t *testing.T) {
	db := openDB(t)
	idx := Load(context.Background(), New(db))

	if got := idx.Search("a", 0); !reflect.DeepEqual(got, []string{"Amoxil", "Panadol", "Vitamin C"}) {
		t.Errorf("unexpected search result %v", got)
	}
	// "Panadol" only contains "ol"; "Old Stock" is deleted.
	if got := idx.Search("OL", 0); !reflect.DeepEqual(got, []string{"Panadol"}) {
		t.Errorf("unexpected search result %v", got)
	}
	if got := idx.Search("VIT", 0); !reflect.DeepEqual(got, []string{"Vitamin C"}) {
		t.Errorf("unexpected search result %v", got)
	}
	if got := idx.Search("", 2); len(got) != 2 {
		t.Errorf("expected limit of 2, got %v", got)
	}

	// The index does not see products added after load until refreshed.
	if _, err := db.Exec(`INSERT INTO product (name, quantity, cost_price, selling_price) VALUES ('Aspirin', 3, 5, 10)`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if got := idx.Search("asp", 0); len(got) != 0 {
		t.Errorf("expected stale index, got %v", got)
	}
	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := idx.Search("asp", 0); !reflect.DeepEqual(got, []string{"Aspirin"}) {
		t.Errorf("expected refreshed index, got %v", got)
	}
}

func TestLoad_StorageErrorDegradesToEmpty(t *testing.T) {
	db := openDB(t)
	db.Close()

	idx := Load(context.Background(), New(db))
	if names := idx.Names(); len(names) != 0 {
		t.Errorf("expected empty index, got %v", names)
	}
}
