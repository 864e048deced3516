package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

// TypeFilter restricts a report to one transaction kind.
type TypeFilter string

const (
	TypeAll    TypeFilter = "ALL"
	TypeEntree TypeFilter = TypeFilter(transaction.KindEntree)
	TypeSortie TypeFilter = TypeFilter(transaction.KindSortie)
)

// ParseTypeFilter never fails: anything other than ENTREE or SORTIE means ALL.
func ParseTypeFilter(s string) TypeFilter {
	switch f := TypeFilter(strings.ToUpper(strings.TrimSpace(s))); f {
	case TypeEntree, TypeSortie:
		return f
	}

	return TypeAll
}

func (f TypeFilter) effective() TypeFilter {
	return ParseTypeFilter(string(f))
}

func (f TypeFilter) keep(k transaction.Kind) bool {
	switch f.effective() {
	case TypeEntree:
		return k == transaction.KindEntree
	case TypeSortie:
		return k == transaction.KindSortie
	}

	return true
}

// CategoryFilter restricts a report to one category id. The zero value
// keeps every category.
type CategoryFilter struct {
	id int64
}

// ParseCategoryFilter accepts a positive integer, written as such or as an
// integral decimal ("3", "3.0"). Anything else yields an empty filter.
func ParseCategoryFilter(s string) CategoryFilter {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryFilter{}
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return CategoryID(id)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f != math.Trunc(f) || f > math.MaxInt64 {
		return CategoryFilter{}
	}

	return CategoryID(int64(f))
}

// CategoryID builds a filter for id; non-positive ids give an empty filter.
func CategoryID(id int64) CategoryFilter {
	if id <= 0 {
		return CategoryFilter{}
	}

	return CategoryFilter{id: id}
}

// ID returns the category id and whether the filter is set.
func (f CategoryFilter) ID() (int64, bool) {
	return f.id, f.id > 0
}

func (f CategoryFilter) keep(categoryID int64) bool {
	id, ok := f.ID()
	return !ok || categoryID == id
}
