package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"westernpos/m/domain"
	"westernpos/m/internal/apperror"
)

// Catalog reads the product table for the sale screen.
type Catalog struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Catalog {
	return &Catalog{db: db}
}

// ListActiveProductNames returns the names of all products that are not
// deleted, ordered by name.
func (c *Catalog) ListActiveProductNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.db.SelectContext(ctx, &names, `SELECT name FROM product WHERE is_deleted = 0 ORDER BY name`); err != nil {
		return nil, apperror.Storagef(err, "unable to list products")
	}
	return names, nil
}

// GetProductDetails looks a product up by exact name. When the product is
// missing, deleted or the query fails, the zero-valued product is returned
// alongside the error; it is never sellable.
func (c *Catalog) GetProductDetails(ctx context.Context, name string) (domain.Product, error) {
	var p domain.Product
	err := c.db.GetContext(ctx, &p, `SELECT id, name, quantity, cost_price, selling_price, is_deleted FROM product WHERE name = ? AND is_deleted = 0`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NewNotFoundError("product " + name)
	}
	if err != nil {
		return domain.Product{}, apperror.Storagef(err, "unable to fetch product %s", name)
	}
	return p, nil
}
