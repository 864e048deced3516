package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ecolefin/internal/matching"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type rule struct {
	pattern    string
	categoryID int64
}

type fakeRepo struct {
	rules     []rule
	lastLabel string
}

func (f *fakeRepo) FindMatch(_ context.Context, label string) (int64, error) {
	f.lastLabel = label
	return 0, nil
}

func (f *fakeRepo) CreateRule(_ context.Context, pattern string, categoryID int64) error {
	f.rules = append(f.rules, rule{pattern: pattern, categoryID: categoryID})
	return nil
}

type fakeCategories map[int64]string

func (f fakeCategories) Category(_ context.Context, id int64) (*transaction.Category, error) {
	name, ok := f[id]
	if !ok {
		return nil, transaction.ErrCategoryNotFound
	}

	return &transaction.Category{ID: id, Name: name}, nil
}

func TestService_Learn(t *testing.T) {
	type args struct {
		pattern    string
		categoryID int64
	}

	type testCase struct {
		name      string
		args      args
		wantErr   error
		wantRules []rule
	}

	tests := []testCase{
		{
			name:      "NormalisesPattern",
			args:      args{pattern: "  Cantine   SCOLAIRE ", categoryID: 1},
			wantRules: []rule{{pattern: "cantine scolaire", categoryID: 1}},
		},
		{
			name:    "EmptyPattern",
			args:    args{pattern: "   ", categoryID: 1},
			wantErr: matching.ErrEmptyPattern,
		},
		{
			name:    "UnknownCategory",
			args:    args{pattern: "bus", categoryID: 9},
			wantErr: transaction.ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := matching.NewService(repo, fakeCategories{1: "Cantine"})

			err := svc.Learn(context.Background(), tt.args.pattern, tt.args.categoryID)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, repo.rules)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRules, repo.rules)
		})
	}
}

func TestService_Suggest(t *testing.T) {
	repo := &fakeRepo{}
	svc := matching.NewService(repo, fakeCategories{})

	id, err := svc.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Empty(t, repo.lastLabel, "blank labels never reach the store")

	_, err = svc.Suggest(context.Background(), "Facture ÉCOLE  Mairie")
	require.NoError(t, err)
	assert.Equal(t, "facture école mairie", repo.lastLabel)
}
