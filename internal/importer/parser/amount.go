package parser

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errEmptyAmount   = errors.New("empty amount")
	errAmountGroups  = errors.New("malformed digit grouping")
	errAmountPrecise = errors.New("amount has more than 2 decimal places")
)

// parseFrenchAmount reads amounts such as "1 234,56", "1.234,56 €",
// "-12,5", "12.50" or "1.234". Without a comma, a dot followed by exactly
// three digits groups thousands. Sub-cent amounts are rejected.
func parseFrenchAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '€':
			return -1
		}

		return r
	}, s)

	if clean == "" {
		return decimal.Decimal{}, errEmptyAmount
	}

	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case strings.Contains(clean, "."):
		groups := strings.Split(clean, ".")
		thousands := true

		for _, g := range groups[1:] {
			if len(g) != 3 {
				thousands = false
				break
			}
		}

		switch {
		case thousands:
			clean = strings.Join(groups, "")
		case len(groups) > 2:
			return decimal.Decimal{}, errAmountGroups
		}
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if !d.Equal(d.Truncate(2)) {
		return decimal.Decimal{}, errAmountPrecise
	}

	return d, nil
}
