// Package store is the relational persistence of the catalog, orders and admins.
// All SQL sticks to the dialect shared by MySQL and SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrDuplicateCategory  = errors.New("category name already exists")
	ErrCategoryInUse      = errors.New("category still has products")
	ErrProductNotFound    = errors.New("product not found")
	ErrNoVariations       = errors.New("product needs at least one variation")
	ErrComplementNotFound = errors.New("complement not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrDuplicateLogin     = errors.New("admin login already exists")
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func New(db *sql.DB) *Store {
	return &Store{
		db: db,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Second)
		},
		newID: uuid.NewString,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("close rows: %v", err)
	}
}

func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
