package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ecolefin/internal/database"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction/store"
)

var transactionColumns = []string{
	"id", "categorie_id", "montant", "type", "date_heure", "lieu", "created_at", "updated_at", "categorie",
}

func TestStore_FindByRange_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.New(db, database.DialectPostgres, time.UTC)

	rows := sqlmock.NewRows(transactionColumns).
		AddRow(2, 1, "400.00", "SORTIE", "2024-06-20T10:00:00.000", nil, "2024-06-20T10:00:01.000", nil, "Cantine").
		AddRow(1, 1, "1000.00", "ENTREE", "2024-06-15T08:00:00.000", "Mairie", "2024-06-15T08:00:01.000", "2024-06-16T08:00:00.000", "Cantine")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.date_heure BETWEEN $1 AND $2")).
		WithArgs("2024-06-01T00:00:00.000", "2024-06-30T23:59:59.999").
		WillReturnRows(rows)

	got, err := s.FindByRange(context.Background(), "2024-06-01T00:00:00.000", "2024-06-30T23:59:59.999")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, transaction.KindSortie, got[0].Kind)
	assert.True(t, decimal.NewFromInt(400).Equal(got[0].Amount))
	assert.Nil(t, got[0].Label)
	assert.Nil(t, got[0].UpdatedAt)
	assert.Equal(t, "Cantine", got[0].Category)
	assert.True(t, time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC).Equal(got[0].Timestamp))

	require.NotNil(t, got[1].Label)
	assert.Equal(t, "Mairie", *got[1].Label)
	require.NotNil(t, got[1].UpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindByRange_PropagatesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.New(db, database.DialectSQLite, time.UTC)

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta("BETWEEN ? AND ?")).WillReturnError(boom)

	_, err = s.FindByRange(context.Background(), "a", "b")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteTransaction_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.New(db, database.DialectPostgres, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.DeleteTransaction(context.Background(), 99)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newSQLiteStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.New(database.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db, database.DialectSQLite, time.UTC)
}

func TestStore_SQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	cantine := &transaction.Category{Name: "Cantine"}
	require.NoError(t, s.CreateCategory(ctx, cantine))
	assert.NotZero(t, cantine.ID)

	err := s.CreateCategory(ctx, &transaction.Category{Name: "cantine"})
	assert.ErrorIs(t, err, transaction.ErrDuplicateCategory)

	label := "Repas juin"
	inserts := []*transaction.Transaction{
		{CategoryID: cantine.ID, Amount: decimal.RequireFromString("1000"), Kind: transaction.KindEntree,
			Timestamp: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Label: &label},
		{CategoryID: cantine.ID, Amount: decimal.RequireFromString("400.5"), Kind: transaction.KindSortie,
			Timestamp: time.Date(2024, 6, 30, 23, 59, 59, 999_000_000, time.UTC)},
		{CategoryID: cantine.ID, Amount: decimal.RequireFromString("200"), Kind: transaction.KindEntree,
			Timestamp: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tx := range inserts {
		require.NoError(t, s.InsertTransaction(ctx, tx))
		assert.NotZero(t, tx.ID)
	}

	got, err := s.FindByRange(ctx, "2024-06-01T00:00:00.000", "2024-06-30T23:59:59.999")
	require.NoError(t, err)
	require.Len(t, got, 2, "both boundaries are inclusive")
	assert.Equal(t, inserts[1].ID, got[0].ID, "newest first")
	assert.Equal(t, inserts[0].ID, got[1].ID)
	assert.Equal(t, "Cantine", got[0].Category)
	assert.True(t, decimal.RequireFromString("400.50").Equal(got[0].Amount))

	recent, err := s.FindRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, inserts[2].ID, recent[0].ID)

	fetched, err := s.GetTransaction(ctx, inserts[0].ID)
	require.NoError(t, err)
	fetched.Amount = decimal.RequireFromString("999.99")
	require.NoError(t, s.UpdateTransaction(ctx, fetched))

	fetched, err = s.GetTransaction(ctx, inserts[0].ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("999.99").Equal(fetched.Amount))
	assert.NotNil(t, fetched.UpdatedAt)

	require.NoError(t, s.DeleteTransaction(ctx, inserts[0].ID))
	_, err = s.GetTransaction(ctx, inserts[0].ID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	_, err = s.GetCategory(ctx, 12345)
	assert.ErrorIs(t, err, transaction.ErrCategoryNotFound)
}

func TestStore_SQLite_ImportTx(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	cat := &transaction.Category{Name: "Fournitures"}
	require.NoError(t, s.CreateCategory(ctx, cat))

	itx, err := s.BeginImport(ctx)
	require.NoError(t, err)

	txs := []*transaction.Transaction{
		{CategoryID: cat.ID, Amount: decimal.NewFromInt(12), Kind: transaction.KindSortie, Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{CategoryID: cat.ID, Amount: decimal.NewFromInt(30), Kind: transaction.KindSortie, Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, itx.InsertTransactions(ctx, txs))
	require.NoError(t, itx.Commit())
	require.NoError(t, itx.Rollback())

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	got, err := s.FindRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_SQLite_AmountPrecision(t *testing.T) {
	type args struct {
		amount string
	}

	type testCase struct {
		name    string
		args    args
		wantErr error
		want    string
	}

	tests := []testCase{
		{name: "Cents", args: args{amount: "12.34"}, want: "12.34"},
		{name: "OneCent", args: args{amount: "0.01"}, want: "0.01"},
		{name: "TrailingZeros", args: args{amount: "7.500"}, want: "7.50"},
		{name: "SubCent", args: args{amount: "0.004"}, wantErr: transaction.ErrInvalidAmount},
		{name: "HalfCent", args: args{amount: "10.005"}, wantErr: transaction.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newSQLiteStore(t)

			cat := &transaction.Category{Name: "Cantine"}
			require.NoError(t, s.CreateCategory(ctx, cat))

			svc := transaction.NewService(s, nil)
			created, err := svc.Create(ctx, transaction.CreateParams{
				CategoryID: cat.ID,
				Amount:     decimal.RequireFromString(tt.args.amount),
				Kind:       transaction.KindEntree,
				Timestamp:  time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				stored, err := s.FindRecent(ctx, 10)
				require.NoError(t, err)
				assert.Empty(t, stored, "nothing is written")

				return
			}

			require.NoError(t, err)

			got, err := s.GetTransaction(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, got.Amount.IsPositive())
			assert.Equal(t, tt.want, got.Amount.StringFixed(2))
			assert.True(t, created.Amount.Equal(got.Amount), "stored amount matches the accepted one")
		})
	}
}

func TestStore_SQLite_SameWallClockOrdersByID(t *testing.T) {
	ctx := context.Background()

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	db, err := database.New(database.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := store.New(db, database.DialectSQLite, paris)

	cat := &transaction.Category{Name: "Cantine"}
	require.NoError(t, s.CreateCategory(ctx, cat))

	// 00:30 and 01:30 UTC both read 02:30 in Paris on the night clocks go back.
	summer := &transaction.Transaction{CategoryID: cat.ID, Amount: decimal.NewFromInt(10), Kind: transaction.KindEntree,
		Timestamp: time.Date(2024, 10, 27, 0, 30, 0, 0, time.UTC)}
	winter := &transaction.Transaction{CategoryID: cat.ID, Amount: decimal.NewFromInt(20), Kind: transaction.KindSortie,
		Timestamp: time.Date(2024, 10, 27, 1, 30, 0, 0, time.UTC)}

	require.NoError(t, s.InsertTransaction(ctx, summer))
	require.NoError(t, s.InsertTransaction(ctx, winter))

	got, err := s.FindByRange(ctx, "2024-10-27T00:00:00.000", "2024-10-27T23:59:59.999")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, winter.ID, got[0].ID, "later insert first on equal timestamps")
	assert.Equal(t, summer.ID, got[1].ID)
	assert.Equal(t, got[0].Timestamp.Format("15:04"), got[1].Timestamp.Format("15:04"))

	recent, err := s.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, winter.ID, recent[0].ID)
}
