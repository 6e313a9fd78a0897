package database

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Connect opens the SQLite database file using the provided DSN.
func Connect(dsn string) *sqlx.DB {
	db, err := Open(dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}

// Open is Connect without the fatal exit.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	// Other screens of the application write to the same file; a single
	// connection keeps writes from this process serialized.
	db.SetMaxOpenConns(1)
	return db, nil
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return dsn + "?" + pragmas
}
