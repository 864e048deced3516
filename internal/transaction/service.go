package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 500
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	InsertTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	FindByRange(ctx context.Context, startISO, endISO string) ([]*Transaction, error)
	FindRecent(ctx context.Context, limit int) ([]*Transaction, error)

	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error

	BeginImport(ctx context.Context) (ImportTx, error)
}

type ImportTx interface {
	InsertTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a Service. now supplies the default timestamp of new
// transactions; nil means time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{repo: repo, now: now}
}

type CreateParams struct {
	CategoryID int64
	Amount     decimal.Decimal
	Kind       Kind
	Timestamp  time.Time // zero means now
	Label      *string
}

// UpdateParams carries the fields to change; nil fields are left untouched.
type UpdateParams struct {
	CategoryID *int64
	Amount     *decimal.Decimal
	Kind       *Kind
	Timestamp  *time.Time
	Label      *string
}

// validateAmount accepts positive amounts in whole cents. The store keeps
// two decimals, so anything finer would be rounded on write.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("%w: at most 2 decimal places", ErrInvalidAmount)
	}

	return nil
}

func validateKind(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	return nil
}

func (s *Service) validateCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrCategoryNotFound
	}

	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return err
	}

	return nil
}

func (s *Service) build(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}

	if err := validateKind(params.Kind); err != nil {
		return nil, err
	}

	if err := s.validateCategory(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	ts := params.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	return &Transaction{
		CategoryID: params.CategoryID,
		Amount:     params.Amount,
		Kind:       params.Kind,
		Timestamp:  ts,
		Label:      normalizeLabel(params.Label),
	}, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx, err := s.build(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.InsertTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// CreateBatch validates every entry before inserting any, then inserts them
// atomically.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	txs := make([]*Transaction, len(params))

	for i, p := range params {
		tx, err := s.build(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txs[i] = tx
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	if err := itx.InsertTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("insert transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Amount != nil {
		if err := validateAmount(*params.Amount); err != nil {
			return nil, err
		}

		tx.Amount = *params.Amount
	}

	if params.Kind != nil {
		if err := validateKind(*params.Kind); err != nil {
			return nil, err
		}

		tx.Kind = *params.Kind
	}

	if params.CategoryID != nil && *params.CategoryID != tx.CategoryID {
		if err := s.validateCategory(ctx, *params.CategoryID); err != nil {
			return nil, err
		}

		tx.CategoryID = *params.CategoryID
	}

	if params.Timestamp != nil && !params.Timestamp.IsZero() {
		tx.Timestamp = *params.Timestamp
	}

	if params.Label != nil {
		tx.Label = normalizeLabel(params.Label)
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// Recent returns the newest transactions. Out of range limits fall back to
// DefaultRecentLimit or are capped at MaxRecentLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Transaction, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	return s.repo.FindRecent(ctx, limit)
}

func (s *Service) FindByRange(ctx context.Context, startISO, endISO string) ([]*Transaction, error) {
	return s.repo.FindByRange(ctx, startISO, endISO)
}

func (s *Service) Categories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) Category(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCategoryName
	}

	c := &Category{Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// CategoryByName finds a category case-insensitively. It returns
// ErrCategoryNotFound when none matches.
func (s *Service) CategoryByName(ctx context.Context, name string) (*Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	name = strings.TrimSpace(name)
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
}

// IsValidation reports whether err was caused by invalid input rather than
// the store.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidCategoryName) ||
		errors.Is(err, ErrCategoryNotFound)
}

func normalizeLabel(label *string) *string {
	if label == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*label)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
