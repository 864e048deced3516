package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ecolefin/internal/importer/parser"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type Service struct {
	parser   *parser.Parser
	txs      Transactions
	matcher  Suggester
	observer Observer
}

// NewService creates an import service. Dates without a zone are read in
// loc. matcher and observer may be nil.
func NewService(txs Transactions, matcher Suggester, observer Observer, loc *time.Location) *Service {
	return &Service{
		parser:   parser.NewParser(loc),
		txs:      txs,
		matcher:  matcher,
		observer: observer,
	}
}

// Prepare parses r and resolves every row's category without writing
// anything. Rows whose category cannot be resolved are skipped.
func (s *Service) Prepare(ctx context.Context, r io.Reader) (*Batch, error) {
	parsed, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	cats, err := s.txs.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	byName := make(map[string]int64, len(cats))
	for _, c := range cats {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	batch := &Batch{
		ID:      uuid.New(),
		Profile: parsed.Profile,
		Charset: parsed.Charset,
		Skipped: parsed.Skipped,
	}

	for _, row := range parsed.Rows {
		categoryID, reason, err := s.resolveCategory(ctx, byName, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}

		if reason != "" {
			batch.Skipped = append(batch.Skipped, parser.Skip{Line: row.Line, Reason: reason})
			continue
		}

		var label *string
		if row.Label != "" {
			label = &row.Label
		}

		batch.Params = append(batch.Params, transaction.CreateParams{
			CategoryID: categoryID,
			Amount:     row.Amount,
			Kind:       row.Kind,
			Timestamp:  row.Date,
			Label:      label,
		})
	}

	return batch, nil
}

func (s *Service) resolveCategory(ctx context.Context, byName map[string]int64, row parser.Row) (int64, string, error) {
	if row.Category != "" {
		id, ok := byName[strings.ToLower(row.Category)]
		if !ok {
			return 0, fmt.Sprintf("unknown category %q", row.Category), nil
		}

		return id, "", nil
	}

	if s.matcher == nil || row.Label == "" {
		return 0, "missing category", nil
	}

	id, err := s.matcher.Suggest(ctx, row.Label)
	if err != nil {
		return 0, "", fmt.Errorf("suggesting category: %w", err)
	}

	if id == 0 {
		return 0, "missing category", nil
	}

	return id, "", nil
}

// Import prepares r and inserts all resolved rows in one transaction.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Batch, error) {
	batch, err := s.Prepare(ctx, r)
	if err != nil {
		return nil, err
	}

	if len(batch.Params) > 0 {
		created, err := s.txs.CreateBatch(ctx, batch.Params)
		if err != nil {
			return nil, fmt.Errorf("importing batch %s: %w", batch.ID, err)
		}

		batch.Created = created
	}

	if s.observer != nil {
		s.observer.ObserveImport(len(batch.Created), len(batch.Skipped))
	}

	slog.Info("import completed",
		"batch", batch.ID,
		"profile", batch.Profile,
		"charset", batch.Charset,
		"imported", len(batch.Created),
		"skipped", len(batch.Skipped),
	)

	return batch, nil
}
