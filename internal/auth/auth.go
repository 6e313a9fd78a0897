package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"westernpos/m/domain"
	"westernpos/m/internal/apperror"
)

const tokenTTL = 12 * time.Hour

type claims struct {
	OperatorID int64  `json:"operator_id"`
	Name       string `json:"name"`
	IsAdmin    bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Service signs operators in and turns bearer tokens back into sessions.
type Service struct {
	db     *sqlx.DB
	secret []byte
	now    func() time.Time
}

func NewService(db *sqlx.DB, secret string) *Service {
	return &Service{db: db, secret: []byte(secret), now: time.Now}
}

// Login checks the operator's password and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, domain.Operator, error) {
	var op domain.Operator
	err := s.db.GetContext(ctx, &op, `SELECT id, name, username, password, is_admin, total_sales FROM auth WHERE username = ?`, strings.ToLower(strings.TrimSpace(username)))
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.Operator{}, apperror.NewUnauthorizedError("invalid credentials")
	}
	if err != nil {
		return "", domain.Operator{}, apperror.Storagef(err, "unable to look up operator")
	}
	if bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(password)) != nil {
		return "", domain.Operator{}, apperror.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.Issue(op.Session())
	if err != nil {
		return "", domain.Operator{}, err
	}
	op.Password = ""
	return token, op, nil
}

func (s *Service) Issue(session domain.Session) (string, error) {
	now := s.now()
	c := claims{
		OperatorID: session.OperatorID,
		Name:       session.OperatorName,
		IsAdmin:    session.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", apperror.NewUnauthorizedError("unable to generate token")
	}
	return token, nil
}

// Parse validates a token and returns the session it carries.
func (s *Service) Parse(tokenString string) (domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return domain.Session{}, apperror.NewUnauthorizedError("invalid token")
	}
	c, ok := token.Claims.(*claims)
	if !ok || c.OperatorID <= 0 {
		return domain.Session{}, apperror.NewUnauthorizedError("invalid token claims")
	}
	return domain.Session{OperatorID: c.OperatorID, OperatorName: c.Name, IsAdmin: c.IsAdmin}, nil
}
