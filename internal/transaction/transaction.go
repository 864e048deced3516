package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction.
type Kind string

const (
	KindEntree Kind = "ENTREE"
	KindSortie Kind = "SORTIE"
)

// ParseKind normalises a kind; ok is false for anything but ENTREE or SORTIE.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	return k, k.Valid()
}

func (k Kind) Valid() bool {
	return k == KindEntree || k == KindSortie
}

var (
	ErrNotFound            = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDuplicateCategory   = errors.New("category already exists")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidKind         = errors.New("kind must be ENTREE or SORTIE")
	ErrInvalidCategoryName = errors.New("category name cannot be empty")
)

// Transaction is a single cash movement of the school's accounts.
type Transaction struct {
	ID         int64
	CategoryID int64
	Category   string // Loaded via JOIN
	Amount     decimal.Decimal
	Kind       Kind
	Timestamp  time.Time
	Label      *string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Category groups transactions for reporting. Names are unique.
type Category struct {
	ID   int64
	Name string
}
