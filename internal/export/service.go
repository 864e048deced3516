// Package export renders computed reports as spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/ecolefin/internal/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

const (
	SheetTransactions = "Transactions"
	SheetBreakdown    = "Catégories"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "2006-01-02 15:04"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Filename names the workbook after the report's range.
func (s *Service) Filename(res *report.Result) string {
	return fmt.Sprintf("rapport_%s_%s.xlsx",
		res.Range.Start.Format("2006-01-02"), res.Range.End.Format("2006-01-02"))
}

// Workbook builds a two-sheet workbook: the report's transactions in store
// order followed by the totals row, and the per-category breakdown.
func (s *Service) Workbook(res *report.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetBreakdown); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	w := &sheetWriter{f: f, bold: bold}

	w.transactions(res)
	w.breakdown(res)

	if w.err != nil {
		f.Close()
		return nil, w.err
	}

	return f, nil
}

// sheetWriter keeps the first error so rows can be written without
// checking every cell.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) row(sheet string, rowNo int, header bool, values ...any) {
	if w.err != nil {
		return
	}

	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		w.err = fmt.Errorf("addressing row %d: %w", rowNo, err)
		return
	}

	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("writing %s row %d: %w", sheet, rowNo, err)
		return
	}

	if !header {
		return
	}

	last, err := excelize.CoordinatesToCellName(len(values), rowNo)
	if err != nil {
		w.err = fmt.Errorf("addressing row %d: %w", rowNo, err)
		return
	}

	if err := w.f.SetCellStyle(sheet, cell, last, w.bold); err != nil {
		w.err = fmt.Errorf("styling %s row %d: %w", sheet, rowNo, err)
	}
}

func (w *sheetWriter) transactions(res *report.Result) {
	w.row(SheetTransactions, 1, true, "Date", "Catégorie", "Type", "Montant", "Libellé")

	rowNo := 2

	for _, tx := range res.Transactions {
		label := ""
		if tx.Label != nil {
			label = *tx.Label
		}

		w.row(SheetTransactions, rowNo, false,
			tx.Timestamp.Format(dateLayout), tx.Category, string(tx.Kind), signed(tx), label)
		rowNo++
	}

	rowNo++
	w.row(SheetTransactions, rowNo, true, "Entrées", res.Totals.Entree.InexactFloat64())
	w.row(SheetTransactions, rowNo+1, true, "Sorties", res.Totals.Sortie.InexactFloat64())
	w.row(SheetTransactions, rowNo+2, true, "Solde", res.Balance.InexactFloat64())
}

func (w *sheetWriter) breakdown(res *report.Result) {
	w.row(SheetBreakdown, 1, true, "Catégorie", "Entrées", "Sorties", "Solde")

	for i, c := range res.CategoryBreakdown {
		w.row(SheetBreakdown, i+2, false,
			c.Category, c.Entree.InexactFloat64(), c.Sortie.InexactFloat64(), c.Balance.InexactFloat64())
	}
}

// signed renders outflows as negative amounts.
func signed(tx *transaction.Transaction) float64 {
	if tx.Kind == transaction.KindSortie {
		return tx.Amount.Neg().InexactFloat64()
	}

	return tx.Amount.InexactFloat64()
}
