package store_test

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ecolefin/internal/database"
	"github.com/MrJamesThe3rd/ecolefin/internal/matching/store"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
	txstore "github.com/MrJamesThe3rd/ecolefin/internal/transaction/store"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func TestStore_SQLite_LongestPatternWins(t *testing.T) {
	ctx := context.Background()

	db, err := database.New(database.DialectSQLite, filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cats := txstore.New(db, database.DialectSQLite, time.UTC)

	cantine := &transaction.Category{Name: "Cantine"}
	require.NoError(t, cats.CreateCategory(ctx, cantine))

	sorties := &transaction.Category{Name: "Sorties"}
	require.NoError(t, cats.CreateCategory(ctx, sorties))

	s := store.New(db, database.DialectSQLite, fixedNow)
	require.NoError(t, s.CreateRule(ctx, "repas", cantine.ID))
	require.NoError(t, s.CreateRule(ctx, "repas zoo", sorties.ID))

	type testCase struct {
		label string
		want  int64
	}

	tests := []testCase{
		{label: "facture repas juin", want: cantine.ID},
		{label: "repas zoo de vincennes", want: sorties.ID},
		{label: "photocopies", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := s.FindMatch(ctx, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Postgres_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.New(db, database.DialectPostgres, fixedNow)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE strpos($1, pattern) > 0")).
		WithArgs("bus ramassage").
		WillReturnRows(sqlmock.NewRows([]string{"categorie_id"}).AddRow(4))

	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3)")).
		WithArgs("bus", int64(4), "2024-06-01T09:00:00.000").
		WillReturnResult(sqlmock.NewResult(1, 1))

	got, err := s.FindMatch(context.Background(), "bus ramassage")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)

	require.NoError(t, s.CreateRule(context.Background(), "bus", 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
