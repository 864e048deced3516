package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/ecolefin/internal/database"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

func New(db *sql.DB, dialect database.Dialect, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}

	return &Store{db: db, dialect: dialect, now: now}
}

// FindMatch expects label and stored patterns to be lower case already.
func (s *Store) FindMatch(ctx context.Context, label string) (int64, error) {
	contains := "instr(?, pattern) > 0"
	if s.dialect == database.DialectPostgres {
		contains = "strpos(?, pattern) > 0"
	}

	query := s.dialect.Rebind(`
		SELECT categorie_id
		FROM category_rules
		WHERE ` + contains + `
		ORDER BY LENGTH(pattern) DESC, id DESC
		LIMIT 1
	`)

	var categoryID int64

	err := s.db.QueryRowContext(ctx, query, label).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("finding match: %w", err)
	}

	return categoryID, nil
}

func (s *Store) CreateRule(ctx context.Context, pattern string, categoryID int64) error {
	query := s.dialect.Rebind(`
		INSERT INTO category_rules (pattern, categorie_id, created_at)
		VALUES (?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query, pattern, categoryID, s.now().Format(period.TimestampLayout))
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}
