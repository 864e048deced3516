package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

func (s *Store) ListCategories(ctx context.Context) ([]*transaction.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nom FROM categories ORDER BY nom`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []*transaction.Category

	for rows.Next() {
		var c transaction.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return cats, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*transaction.Category, error) {
	var c transaction.Category

	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT id, nom FROM categories WHERE id = ?`), id).
		Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrCategoryNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *transaction.Category) error {
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(`INSERT INTO categories (nom) VALUES (?) RETURNING id`), c.Name).
		Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", transaction.ErrDuplicateCategory, c.Name)
		}

		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
	}

	return false
}
