package migrations

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS auth (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            is_admin INTEGER NOT NULL DEFAULT 0,
            total_sales INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS product (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
            cost_price REAL NOT NULL DEFAULT 0,
            selling_price REAL NOT NULL DEFAULT 0,
            is_deleted INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS sales (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_name TEXT NOT NULL,
            customer_contact TEXT NOT NULL,
            purchase_time TEXT NOT NULL,
            total_price REAL NOT NULL,
            total_revenue REAL NOT NULL DEFAULT 0,
            payment_method TEXT NOT NULL,
            sales_rep INTEGER NOT NULL,
            includes_vat INTEGER NOT NULL DEFAULT 0,
            FOREIGN KEY(sales_rep) REFERENCES auth(id)
        );`,
	`CREATE TABLE IF NOT EXISTS sales_item (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            product_name TEXT NOT NULL,
            unit_cost REAL NOT NULL,
            quantity INTEGER NOT NULL,
            total_cost REAL NOT NULL,
            sale INTEGER NOT NULL,
            product INTEGER NOT NULL,
            FOREIGN KEY(sale) REFERENCES sales(id),
            FOREIGN KEY(product) REFERENCES product(id)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_sales_item_sale ON sales_item(sale);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_purchase_time ON sales(purchase_time);`,
}

// Run creates the database schema required for the POS backend.
func Run(db *sqlx.DB) {
	if err := Apply(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

// Apply runs every schema statement and returns the first failure.
func Apply(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
