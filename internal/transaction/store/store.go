package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/ecolefin/internal/database"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
	loc     *time.Location
}

// New creates a Store. Timestamps are written as canonical local text in loc
// so that BETWEEN on the column is chronological; nil means time.Local.
func New(db *sql.DB, dialect database.Dialect, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}

	return &Store{db: db, dialect: dialect, loc: loc}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// timestamp scans the text, blob or time forms a driver may return for a
// timestamp column.
type timestamp struct {
	loc   *time.Location
	Time  time.Time
	Valid bool
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Valid = false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v.In(ts.loc), true
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	}

	return fmt.Errorf("unsupported timestamp type %T", src)
}

func (ts *timestamp) parse(s string) error {
	t, err := time.ParseInLocation(period.TimestampLayout, strings.TrimSpace(s), ts.loc)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}

	ts.Time, ts.Valid = t, true

	return nil
}

func (s *Store) format(t time.Time) string {
	return t.In(s.loc).Format(period.TimestampLayout)
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order: id, categorie_id, montant, type, date_heure, lieu, created_at, updated_at, categorie
func (s *Store) scanTransaction(sc scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var kind string

	var label, category sql.NullString

	dateHeure := timestamp{loc: s.loc}
	createdAt := timestamp{loc: s.loc}
	updatedAt := timestamp{loc: s.loc}

	if err := sc.Scan(
		&tx.ID, &tx.CategoryID, &tx.Amount, &kind, &dateHeure, &label,
		&createdAt, &updatedAt, &category,
	); err != nil {
		return nil, err
	}

	tx.Kind = transaction.Kind(kind)
	tx.Timestamp = dateHeure.Time
	tx.CreatedAt = createdAt.Time
	tx.Category = category.String

	if label.Valid {
		tx.Label = &label.String
	}

	if updatedAt.Valid {
		tx.UpdatedAt = &updatedAt.Time
	}

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.categorie_id, t.montant, t.type, t.date_heure, t.lieu,
	t.created_at, t.updated_at, c.nom AS categorie
`

const fromTransactions = `
	FROM transactions t
	LEFT JOIN categories c ON t.categorie_id = c.id
`

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := s.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

const insertTransactionQuery = `
	INSERT INTO transactions (categorie_id, montant, type, date_heure, lieu, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id
`

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) insert(ctx context.Context, q execer, tx *transaction.Transaction) error {
	now := time.Now().In(s.loc)

	err := q.QueryRowContext(ctx, s.dialect.Rebind(insertTransactionQuery),
		tx.CategoryID,
		tx.Amount.StringFixed(2),
		string(tx.Kind),
		s.format(tx.Timestamp),
		tx.Label,
		s.format(now),
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	tx.CreatedAt = now

	return nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx *transaction.Transaction) error {
	return s.insert(ctx, s.db, tx)
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `WHERE t.id = ?`

	tx, err := s.scanTransaction(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// FindByRange returns transactions whose timestamp lies in [startISO, endISO],
// newest first.
func (s *Store) FindByRange(ctx context.Context, startISO, endISO string) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.date_heure BETWEEN ? AND ?
		ORDER BY t.date_heure DESC, t.id DESC`

	txs, err := s.queryTransactions(ctx, query, startISO, endISO)
	if err != nil {
		return nil, fmt.Errorf("finding transactions by range: %w", err)
	}

	return txs, nil
}

func (s *Store) FindRecent(ctx context.Context, limit int) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		ORDER BY t.date_heure DESC, t.id DESC
		LIMIT ?`

	txs, err := s.queryTransactions(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("finding recent transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET categorie_id = ?, montant = ?, type = ?, date_heure = ?, lieu = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().In(s.loc)

	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query),
		tx.CategoryID,
		tx.Amount.StringFixed(2),
		string(tx.Kind),
		s.format(tx.Timestamp),
		tx.Label,
		s.format(now),
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	if err := expectOneRow(res); err != nil {
		return err
	}

	tx.UpdatedAt = &now

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM transactions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

type importTx struct {
	store *Store
	tx    *sql.Tx
}

func (s *Store) BeginImport(ctx context.Context) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	return &importTx{store: s, tx: dbTx}, nil
}

func (itx *importTx) Commit() error { return itx.tx.Commit() }

// Rollback is safe to call after Commit.
func (itx *importTx) Rollback() error {
	if err := itx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (itx *importTx) InsertTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		if err := itx.store.insert(ctx, itx.tx, tx); err != nil {
			return err
		}
	}

	return nil
}
