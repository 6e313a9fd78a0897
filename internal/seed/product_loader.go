package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LoadProducts ingests a catalog CSV (name, quantity, cost_price,
// selling_price) into the product table, ignoring names that already exist.
// It returns the number of rows inserted.
func LoadProducts(db *sqlx.DB, csvPath string) int {
	if csvPath == "" {
		return 0
	}
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load product catalog %s: %v", csvPath, err)
		return 0
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read product header: %v", err)
		return 0
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start product transaction: %v", err)
		return 0
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO product (name, quantity, cost_price, selling_price) VALUES (?, ?, ?, ?)`)
	if err != nil {
		log.Printf("unable to prepare product insert: %v", err)
		_ = tx.Rollback()
		return 0
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read product row: %v", err)
			continue
		}
		if len(record) < 4 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		quantity, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil || quantity < 0 {
			log.Printf("skipping product %s: invalid quantity %q", name, record[1])
			continue
		}
		cost, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			log.Printf("skipping product %s: invalid cost price %q", name, record[2])
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil {
			log.Printf("skipping product %s: invalid selling price %q", name, record[3])
			continue
		}

		res, err := stmt.Exec(name, quantity, cost, price)
		if err != nil {
			log.Printf("unable to insert product %s: %v", name, err)
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit product seed: %v", err)
		return 0
	}
	log.Printf("seeded product catalog with %d rows", rows)
	return rows
}
