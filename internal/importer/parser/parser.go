// Package parser reads semicolon separated ledger exports as produced by
// French spreadsheets and banks.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/ecolefin/internal/encoding"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

var dateLayouts = []string{"02/01/2006", "2006-01-02", "02/01/2006 15:04", "2006-01-02 15:04"}

// Row is one parsed record; Line is its 1-based record number. Category is the raw name from the file, possibly
// empty.
type Row struct {
	Line     int
	Date     time.Time
	Category string
	Amount   decimal.Decimal
	Kind     transaction.Kind
	Label    string
}

// Skip records a line that was ignored and why.
type Skip struct {
	Line   int
	Reason string
}

type Result struct {
	Profile string
	Charset enc.Charset
	Rows    []Row
	Skipped []Skip
}

type Parser struct {
	loc *time.Location
}

// NewParser creates a Parser reading dates in loc; nil means time.Local.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) (*Result, error) {
	utf8r, charset, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no known column layout found: expected Date;Catégorie;Montant;Type;Libellé or Date;Libellé;Débit;Crédit")
	}

	res := &Result{Profile: profile.Name, Charset: charset}
	p.parseRows(res, profile, cols, rows[headerIdx+1:], headerIdx+1)

	return res, nil
}

type colIndex map[string]int

func (c colIndex) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok || name == "" || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// detectProfile scans rows for a header matching a known profile. Header
// names are compared case-insensitively.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if _, dup := cols[name]; name != "" && !dup {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func (p *Parser) parseRows(res *Result, profile *Profile, cols colIndex, rows [][]string, firstIdx int) {
	for i, row := range rows {
		line := firstIdx + i + 1

		if blank(row) {
			continue
		}

		date, ok := p.parseDate(cols.get(row, profile.DateCol))
		if !ok {
			res.Skipped = append(res.Skipped, Skip{Line: line, Reason: "invalid date"})
			continue
		}

		amount, kind, reason := parseAmount(profile, cols, row)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skip{Line: line, Reason: reason})
			continue
		}

		res.Rows = append(res.Rows, Row{
			Line:     line,
			Date:     date,
			Category: cols.get(row, profile.CategoryCol),
			Amount:   amount,
			Kind:     kind,
			Label:    cols.get(row, profile.LabelCol),
		})
	}
}

func (p *Parser) parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount returns the absolute amount and its kind, or a skip reason.
func parseAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Kind, string) {
	switch p.AmountMode {
	case amountSigned:
		d, err := parseFrenchAmount(cols.get(row, p.AmountCol))
		if err != nil {
			return decimal.Decimal{}, "", "invalid amount"
		}

		if d.IsZero() {
			return decimal.Decimal{}, "", "zero amount"
		}

		kind := transaction.KindEntree
		if d.IsNegative() {
			kind = transaction.KindSortie
		}

		if raw := cols.get(row, p.KindCol); raw != "" {
			k, ok := transaction.ParseKind(raw)
			if !ok {
				return decimal.Decimal{}, "", "invalid type"
			}

			kind = k
		}

		return d.Abs(), kind, ""
	case amountSplit:
		if d, err := parseFrenchAmount(cols.get(row, p.DebitCol)); err == nil && !d.IsZero() {
			return d.Abs(), transaction.KindSortie, ""
		}

		if d, err := parseFrenchAmount(cols.get(row, p.CreditCol)); err == nil && !d.IsZero() {
			return d.Abs(), transaction.KindEntree, ""
		}

		return decimal.Decimal{}, "", "invalid amount"
	}

	return decimal.Decimal{}, "", "unsupported layout"
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
