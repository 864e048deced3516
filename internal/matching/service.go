// Package matching suggests a category for a transaction label from
// patterns learnt earlier.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

var ErrEmptyPattern = errors.New("pattern cannot be empty")

type Repository interface {
	// FindMatch returns the category of the longest pattern contained in
	// label, or 0 when none is.
	FindMatch(ctx context.Context, label string) (int64, error)
	CreateRule(ctx context.Context, pattern string, categoryID int64) error
}

type CategoryLookup interface {
	Category(ctx context.Context, id int64) (*transaction.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryLookup
}

func NewService(repo Repository, categories CategoryLookup) *Service {
	return &Service{repo: repo, categories: categories}
}

// Suggest returns the category id suggested for label, 0 if none.
func (s *Service) Suggest(ctx context.Context, label string) (int64, error) {
	label = normalize(label)
	if label == "" {
		return 0, nil
	}

	return s.repo.FindMatch(ctx, label)
}

// Learn remembers that labels containing pattern belong to categoryID.
// Matching ignores case.
func (s *Service) Learn(ctx context.Context, pattern string, categoryID int64) error {
	pattern = normalize(pattern)
	if pattern == "" {
		return ErrEmptyPattern
	}

	if _, err := s.categories.Category(ctx, categoryID); err != nil {
		return fmt.Errorf("checking category: %w", err)
	}

	return s.repo.CreateRule(ctx, pattern, categoryID)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
