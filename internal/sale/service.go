package sale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"westernpos/m/domain"
	"westernpos/m/internal/apperror"
	"westernpos/m/internal/cart"
)

// TimeLayout is how purchase_time is stored.
const TimeLayout = "2006-01-02 15:04:05"

// Record is a persisted sale with its items and the name of the operator who
// made it.
type Record struct {
	domain.Sale
	Cashier string            `db:"cashier" json:"cashier"`
	Items   []domain.SaleItem `db:"-" json:"items"`
}

// Completed is the result of a successful sale completion.
type Completed struct {
	Record
	Totals cart.Totals `json:"totals"`
	// Dropped lists lines that were on the cart with a zero quantity and were
	// therefore not written.
	Dropped []cart.Line `json:"dropped,omitempty"`
}

// Service persists sales.
type Service struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Complete validates the request and writes the sale in a single transaction:
// header, items, stock decrement, revenue and the operator's sale counter.
// On any failure nothing is written.
func (s *Service) Complete(ctx context.Context, session domain.Session, req Request, c *cart.Cart) (*Completed, error) {
	if session.OperatorID <= 0 {
		return nil, apperror.NewUnauthorizedError("no operator is signed in")
	}
	if err := Validate(req, c); err != nil {
		return nil, err
	}
	req = req.normalized()
	totals := c.Totals()
	keep, dropped := c.Partition()

	sale := domain.Sale{
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		PurchaseTime:    s.now().UTC().Format(TimeLayout),
		TotalPrice:      totals.GrandTotal,
		TotalRevenue:    decimal.Zero,
		PaymentMethod:   req.PaymentMethod,
		SalesRep:        session.OperatorID,
		IncludesVAT:     totals.IncludesVAT,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperror.Storagef(err, "unable to start sale")
	}
	defer tx.Rollback()

	// The operator must exist before anything is written; the foreign key on
	// sales_rep would otherwise surface as a storage failure.
	var operator string
	err = tx.GetContext(ctx, &operator, `SELECT name FROM auth WHERE id = ?`, session.OperatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("operator %d", session.OperatorID))
	}
	if err != nil {
		return nil, apperror.Storagef(err, "unable to load operator")
	}
	cashier := session.OperatorName
	if cashier == "" {
		cashier = operator
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO sales (customer_name, customer_contact, purchase_time, total_price, total_revenue, payment_method, sales_rep, includes_vat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.CustomerName, sale.CustomerContact, sale.PurchaseTime, sale.TotalPrice, sale.TotalRevenue,
		sale.PaymentMethod, sale.SalesRep, sale.IncludesVAT)
	if err != nil {
		return nil, apperror.Storagef(err, "unable to create sale")
	}
	if sale.ID, err = res.LastInsertId(); err != nil {
		return nil, apperror.Storagef(err, "unable to create sale")
	}

	items, err := insertItems(ctx, tx, sale.ID, keep)
	if err != nil {
		return nil, err
	}
	if err := decrementStock(ctx, tx, keep); err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, l := range keep {
		revenue = revenue.Add(l.Revenue())
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sales SET total_revenue = ? WHERE id = ?`, revenue, sale.ID); err != nil {
		return nil, apperror.Storagef(err, "unable to record sale revenue")
	}
	sale.TotalRevenue = revenue

	if _, err := tx.ExecContext(ctx, `UPDATE auth SET total_sales = total_sales + 1 WHERE id = ?`, session.OperatorID); err != nil {
		return nil, apperror.Storagef(err, "unable to update operator sales")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Storagef(err, "unable to finalize sale")
	}

	log.Printf("[sale] operator %d completed sale %d: %d items, total %s", session.OperatorID, sale.ID, len(items), sale.TotalPrice)
	if len(dropped) > 0 {
		log.Printf("[sale] sale %d: %d zero-quantity lines not recorded", sale.ID, len(dropped))
	}

	return &Completed{
		Record:  Record{Sale: sale, Cashier: cashier, Items: items},
		Totals:  totals,
		Dropped: dropped,
	}, nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, saleID int64, lines []cart.Line) ([]domain.SaleItem, error) {
	stmt, err := tx.PreparexContext(ctx, `INSERT INTO sales_item (product_name, unit_cost, quantity, total_cost, sale, product) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, apperror.Storagef(err, "unable to save sale items")
	}
	defer stmt.Close()

	items := make([]domain.SaleItem, 0, len(lines))
	for _, l := range lines {
		item := domain.SaleItem{
			ProductName: l.ProductName,
			UnitCost:    l.UnitPrice,
			Quantity:    l.Quantity,
			TotalCost:   l.Subtotal,
			SaleID:      saleID,
			ProductID:   l.ProductID,
		}
		res, err := stmt.ExecContext(ctx, item.ProductName, item.UnitCost, item.Quantity, item.TotalCost, item.SaleID, item.ProductID)
		if err != nil {
			return nil, apperror.Storagef(err, "unable to save sale item %s", l.ProductName)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return nil, apperror.Storagef(err, "unable to save sale item %s", l.ProductName)
		}
		items = append(items, item)
	}
	return items, nil
}

// decrementStock takes the sold quantities off the product table. The guard
// fails the sale when another screen sold the remaining stock first.
func decrementStock(ctx context.Context, tx *sqlx.Tx, lines []cart.Line) error {
	stmt, err := tx.PreparexContext(ctx, `UPDATE product SET quantity = quantity - ? WHERE id = ? AND is_deleted = 0 AND quantity >= ?`)
	if err != nil {
		return apperror.Storagef(err, "unable to update product quantities")
	}
	defer stmt.Close()

	for _, l := range lines {
		res, err := stmt.ExecContext(ctx, l.Quantity, l.ProductID, l.Quantity)
		if err != nil {
			return apperror.Storagef(err, "unable to update quantity of %s", l.ProductName)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperror.NewConflictError("insufficient stock for " + l.ProductName)
		}
	}
	return nil
}

const selectSale = `SELECT s.id, s.customer_name, s.customer_contact, s.purchase_time, s.total_price, s.total_revenue,
		s.payment_method, s.sales_rep, s.includes_vat, COALESCE(a.name, '') AS cashier
	FROM sales s
	LEFT JOIN auth a ON a.id = s.sales_rep`

// Get loads one sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, selectSale+` WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("sale %d", id))
	}
	if err != nil {
		return nil, apperror.Storagef(err, "unable to fetch sale")
	}
	if err := s.db.SelectContext(ctx, &rec.Items, `SELECT id, product_name, unit_cost, quantity, total_cost, sale, product FROM sales_item WHERE sale = ? ORDER BY id`, id); err != nil {
		return nil, apperror.Storagef(err, "unable to load sale items")
	}
	return &rec, nil
}

// Filter narrows List to an inclusive date range (YYYY-MM-DD, either end
// optional) and optionally one operator.
type Filter struct {
	StartDate  string
	EndDate    string
	OperatorID int64
}

// List returns sales matching f, newest first, with their items.
func (s *Service) List(ctx context.Context, f Filter) ([]Record, error) {
	var (
		args    []any
		clauses []string
		fields  []apperror.FieldError
	)
	if f.StartDate != "" {
		if _, err := time.Parse("2006-01-02", f.StartDate); err != nil {
			fields = append(fields, apperror.FieldError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
		args = append(args, f.StartDate)
		clauses = append(clauses, "DATE(s.purchase_time) >= ?")
	}
	if f.EndDate != "" {
		if _, err := time.Parse("2006-01-02", f.EndDate); err != nil {
			fields = append(fields, apperror.FieldError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
		args = append(args, f.EndDate)
		clauses = append(clauses, "DATE(s.purchase_time) <= ?")
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidationError(fields)
	}
	if f.OperatorID > 0 {
		args = append(args, f.OperatorID)
		clauses = append(clauses, "s.sales_rep = ?")
	}

	query := selectSale
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.purchase_time DESC, s.id DESC"

	var records []Record
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, apperror.Storagef(err, "unable to fetch sales")
	}
	if len(records) == 0 {
		return []Record{}, nil
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	itemsQuery, itemsArgs, err := sqlx.In(`SELECT id, product_name, unit_cost, quantity, total_cost, sale, product FROM sales_item WHERE sale IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, apperror.Storagef(err, "unable to prepare sale items query")
	}
	itemsQuery = s.db.Rebind(itemsQuery)

	var items []domain.SaleItem
	if err := s.db.SelectContext(ctx, &items, itemsQuery, itemsArgs...); err != nil {
		return nil, apperror.Storagef(err, "unable to load sale items")
	}
	bySale := make(map[int64][]domain.SaleItem)
	for _, item := range items {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}
	for i := range records {
		records[i].Items = bySale[records[i].ID]
	}
	return records, nil
}
