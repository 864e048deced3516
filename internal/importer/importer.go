// Package importer turns ledger exports into transactions.
package importer

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ecolefin/internal/encoding"
	"github.com/MrJamesThe3rd/ecolefin/internal/importer/parser"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

// ErrInvalidFile wraps every failure to read or parse an uploaded file.
var ErrInvalidFile = errors.New("invalid import file")

type Transactions interface {
	Categories(ctx context.Context) ([]*transaction.Category, error)
	CreateBatch(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error)
}

// Suggester picks a category for rows whose category cell is empty. A zero
// id means no suggestion.
type Suggester interface {
	Suggest(ctx context.Context, label string) (int64, error)
}

// Observer is notified of every completed import.
type Observer interface {
	ObserveImport(imported, skipped int)
}

// Batch is the outcome of one import run.
type Batch struct {
	ID      uuid.UUID
	Profile string
	Charset encoding.Charset
	Params  []transaction.CreateParams
	Skipped []parser.Skip
	Created []*transaction.Transaction
}
