package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ecofinds/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so repository helpers
// can run inside or outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func unmarshalDetails(raw []byte, details *domain.ProductDetails) error {
	if err := json.Unmarshal(raw, details); err != nil {
		return fmt.Errorf("failed to decode product details: %w", err)
	}
	return nil
}
