package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

func testResolver() *period.Resolver {
	return period.NewResolver(func() time.Time {
		return time.Date(2024, 6, 18, 10, 0, 0, 0, time.UTC)
	}, time.UTC)
}

func TestPeriodPicker_SelectsMonthByDefault(t *testing.T) {
	p := NewPeriodPicker(testResolver())

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, p.IsSelecting())

	msg, ok := cmd().(PeriodSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, period.KindMonth, msg.Descriptor.Period)
	assert.Equal(t, "2024-06-01T00:00:00.000", msg.Range.StartISO())
	assert.Equal(t, "2024-06-30T23:59:59.999", msg.Range.EndISO())
}

func TestPeriodPicker_CustomRange(t *testing.T) {
	p := NewPeriodPicker(testResolver())

	for range 10 {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, p.IsSelecting())

	p.startInput.SetValue("2024-06-30")
	p.endInput.SetValue("2024-06-01")

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, p.err, period.ErrInvalidCustomRange)

	p.startInput.SetValue("2024-06-01")
	p.endInput.SetValue("2024-06-30")

	p, cmd = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.NoError(t, p.err)

	msg, ok := cmd().(PeriodSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, period.KindCustom, msg.Descriptor.Period)
	assert.Equal(t, "2024-06-30T23:59:59.999", msg.Range.EndISO())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, p.IsSelecting())
}

func TestDashboardRows_FollowPeriodOrder(t *testing.T) {
	totals := map[period.Kind]report.Totals{
		period.KindYear: {
			Entree:  decimal.NewFromInt(1200),
			Sortie:  decimal.NewFromInt(400),
			Balance: decimal.NewFromInt(800),
		},
	}

	rows := dashboardRows(totals)
	require.Len(t, rows, len(period.Kinds()))

	assert.Equal(t, period.KindDay.Label(), rows[0][0])
	assert.Equal(t, "0.00 €", rows[0][1])

	last := rows[len(rows)-1]
	assert.Equal(t, period.KindYear.Label(), last[0])
	assert.Equal(t, "1200.00 €", last[1])
	assert.Equal(t, "800.00 €", last[3])
}

func TestFormatSigned(t *testing.T) {
	out := &transaction.Transaction{Amount: decimal.RequireFromString("36.1"), Kind: transaction.KindSortie}
	in := &transaction.Transaction{Amount: decimal.NewFromInt(5), Kind: transaction.KindEntree}

	assert.Equal(t, "-36.10 €", FormatSigned(out))
	assert.Equal(t, "5.00 €", FormatSigned(in))
}

func TestValidateAmountInput(t *testing.T) {
	assert.NoError(t, validateAmountInput("12,50"))
	assert.NoError(t, validateAmountInput(" 3 "))
	assert.Error(t, validateAmountInput("abc"))
	assert.ErrorIs(t, validateAmountInput("0"), transaction.ErrInvalidAmount)
	assert.ErrorIs(t, validateAmountInput("0,004"), transaction.ErrInvalidAmount)
}
