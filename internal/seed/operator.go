package seed

import (
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// EnsureOperator creates the first admin operator when the auth table is
// empty. It is a no-op once any operator exists.
func EnsureOperator(db *sqlx.DB, name, username, password string) error {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM auth`); err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if count > 0 {
		return nil
	}
	if password == "" {
		log.Printf("no operators exist and ADMIN_PASSWORD is empty; skipping operator bootstrap")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO auth (name, username, password, is_admin) VALUES (?, ?, ?, 1)`,
		name, strings.ToLower(username), string(hashed)); err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}
	log.Printf("created admin operator %q", username)
	return nil
}
