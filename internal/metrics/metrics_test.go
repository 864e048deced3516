package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ecolefin/internal/metrics"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type stubAggregator struct {
	err error
}

func (s stubAggregator) Aggregate(context.Context, report.Query) (*report.Result, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &report.Result{Transactions: []*transaction.Transaction{{ID: 1}, {ID: 2}}}, nil
}

func TestInstrument(t *testing.T) {
	type testCase struct {
		name        string
		err         error
		kind        period.Kind
		wantPeriod  string
		wantOutcome string
	}

	tests := []testCase{
		{name: "Success", kind: period.KindMonth, wantPeriod: "month", wantOutcome: metrics.OutcomeSuccess},
		{name: "UnknownPeriod", err: period.ErrUnknownPeriod, kind: period.Kind("decade"), wantPeriod: "invalid", wantOutcome: metrics.OutcomeInvalidPeriod},
		{name: "BadCustomRange", err: period.ErrInvalidCustomRange, kind: period.KindCustom, wantPeriod: "invalid", wantOutcome: metrics.OutcomeInvalidPeriod},
		{name: "StoreFailure", err: errors.New("database is locked"), kind: period.KindYear, wantPeriod: "year", wantOutcome: metrics.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := metrics.NewRecorder()
			agg := metrics.Instrument(stubAggregator{err: tt.err}, rec)

			_, err := agg.Aggregate(context.Background(), report.Query{Period: period.Descriptor{Period: tt.kind}})
			assert.ErrorIs(t, err, tt.err)

			expected := `
# HELP report_aggregations_total Total number of report aggregations by period kind and outcome
# TYPE report_aggregations_total counter
report_aggregations_total{outcome="` + tt.wantOutcome + `",period="` + tt.wantPeriod + `"} 1
`
			require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "report_aggregations_total"))
		})
	}
}

func TestRecorder_Handler(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObserveImport(3, 1)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `import_rows_total{outcome="success"} 3`)
	assert.Contains(t, string(body), `import_rows_total{outcome="skipped"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
