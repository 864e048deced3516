// Package dashboard computes the headline totals shown on the home screen.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
)

type Composer struct {
	engine report.Aggregator
}

func NewComposer(engine report.Aggregator) *Composer {
	return &Composer{engine: engine}
}

// Compose returns the unfiltered totals of each fixed period, anchored on
// today. Any failing period fails the whole call.
func (c *Composer) Compose(ctx context.Context) (map[period.Kind]report.Totals, error) {
	kinds := period.Kinds()
	totals := make(map[period.Kind]report.Totals, len(kinds))

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)

	for _, kind := range kinds {
		g.Go(func() error {
			res, err := c.engine.Aggregate(ctx, report.Query{
				Period: period.Descriptor{Period: kind},
				Type:   report.TypeAll,
			})
			if err != nil {
				return fmt.Errorf("computing %s totals: %w", kind, err)
			}

			mu.Lock()
			totals[kind] = res.Totals
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return totals, nil
}
