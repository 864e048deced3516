package report

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

// RangeReader is the part of the transaction store the engine reads from.
type RangeReader interface {
	FindByRange(ctx context.Context, startISO, endISO string) ([]*transaction.Transaction, error)
}

// Aggregator is implemented by Engine and by decorators around it.
type Aggregator interface {
	Aggregate(ctx context.Context, q Query) (*Result, error)
}

// Query selects the transactions of a report.
type Query struct {
	Period   period.Descriptor
	Type     TypeFilter
	Category CategoryFilter
}

// NewQuery builds a query from raw form or URL values, applying the lenient
// filter parsing.
func NewQuery(kind, referenceDate, startDate, endDate, categoryID, typeFilter string) Query {
	return Query{
		Period: period.Descriptor{
			Period:        period.ParseKind(kind),
			ReferenceDate: referenceDate,
			StartDate:     startDate,
			EndDate:       endDate,
		},
		Type:     ParseTypeFilter(typeFilter),
		Category: ParseCategoryFilter(categoryID),
	}
}

// Totals holds inflows, outflows and their difference.
type Totals struct {
	Entree  decimal.Decimal
	Sortie  decimal.Decimal
	Balance decimal.Decimal
}

func (t *Totals) add(tx *transaction.Transaction) {
	switch tx.Kind {
	case transaction.KindEntree:
		t.Entree = t.Entree.Add(tx.Amount)
	case transaction.KindSortie:
		t.Sortie = t.Sortie.Add(tx.Amount)
	}

	t.Balance = t.Entree.Sub(t.Sortie)
}

// CategoryTotals is one row of the per-category breakdown.
type CategoryTotals struct {
	Category string
	Totals
}

// Result is a computed report. It is never cached.
type Result struct {
	Range             period.Range
	Transactions      []*transaction.Transaction
	Totals            Totals
	Balance           decimal.Decimal
	CategoryBreakdown []CategoryTotals
	Type              TypeFilter
	CategoryID        *int64
}

type Engine struct {
	store    RangeReader
	resolver *period.Resolver
}

func NewEngine(store RangeReader, resolver *period.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver}
}

// Aggregate resolves the query's period, fetches its transactions and
// computes totals and the per-category breakdown. Transactions keep the
// store's order.
func (e *Engine) Aggregate(ctx context.Context, q Query) (*Result, error) {
	rng, err := e.resolver.Resolve(q.Period)
	if err != nil {
		return nil, err
	}

	rows, err := e.store.FindByRange(ctx, rng.StartISO(), rng.EndISO())
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}

	typ := q.Type.effective()

	// Type first, then category.
	kept := make([]*transaction.Transaction, 0, len(rows))

	for _, tx := range rows {
		if !typ.keep(tx.Kind) {
			continue
		}

		if !q.Category.keep(tx.CategoryID) {
			continue
		}

		kept = append(kept, tx)
	}

	res := &Result{
		Range:             rng,
		Transactions:      kept,
		Totals:            zeroTotals(),
		CategoryBreakdown: breakdown(kept),
		Type:              typ,
	}

	for _, tx := range kept {
		res.Totals.add(tx)
	}

	res.Balance = res.Totals.Balance

	if id, ok := q.Category.ID(); ok {
		res.CategoryID = &id
	}

	return res, nil
}

func zeroTotals() Totals {
	return Totals{Entree: decimal.Zero, Sortie: decimal.Zero, Balance: decimal.Zero}
}

// breakdown groups by category name; two categories sharing a name share a row.
func breakdown(txs []*transaction.Transaction) []CategoryTotals {
	index := make(map[string]int)
	rows := make([]CategoryTotals, 0)

	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(rows)
			index[tx.Category] = i
			rows = append(rows, CategoryTotals{Category: tx.Category, Totals: zeroTotals()})
		}

		rows[i].add(tx)
	}

	SortByCategory(rows)

	return rows
}

// SortByCategory orders rows by name with French collation, ignoring case.
func SortByCategory(rows []CategoryTotals) {
	// Collators are not safe for concurrent use.
	col := collate.New(language.French, collate.IgnoreCase)

	slices.SortStableFunc(rows, func(a, b CategoryTotals) int {
		return col.CompareString(a.Category, b.Category)
	})
}
