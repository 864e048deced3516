package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type reportState int

const (
	reportStatePeriod reportState = iota
	reportStateResult
)

var typeFilters = []report.TypeFilter{report.TypeAll, report.TypeEntree, report.TypeSortie}

type ReportModel struct {
	CommonModel
	engine    report.Aggregator
	txService *transaction.Service

	state  reportState
	picker PeriodPicker

	descriptor  period.Descriptor
	typeIdx     int
	categories  []*transaction.Category
	categoryIdx int // 0 means every category

	result    *report.Result
	breakdown table.Model
	txTable   table.Model

	loading bool
	err     error
}

func NewReportModel(engine report.Aggregator, txSvc *transaction.Service, resolver *period.Resolver) ReportModel {
	breakdown := newTable([]table.Column{
		{Title: "Catégorie", Width: 20},
		{Title: "Entrées", Width: 14},
		{Title: "Sorties", Width: 14},
		{Title: "Solde", Width: 14},
	}, 8, false)

	txTable := newTable([]table.Column{
		{Title: "Date", Width: 17},
		{Title: "Catégorie", Width: 20},
		{Title: "Montant", Width: 14},
		{Title: "Libellé", Width: 30},
	}, 10, true)

	return ReportModel{
		engine:    engine,
		txService: txSvc,
		picker:    NewPeriodPicker(resolver),
		breakdown: breakdown,
		txTable:   txTable,
	}
}

func (m ReportModel) Title() string { return "Rapport" }

func (m ReportModel) ShortHelp() string {
	if m.state == reportStateResult {
		return "Esc: back | p: period | t: type | c: category | r: refresh"
	}

	return "Esc: back | Enter: select"
}

func (m ReportModel) Init() tea.Cmd {
	return m.loadCategoriesCmd()
}

func (m ReportModel) query() report.Query {
	q := report.Query{
		Period: m.descriptor,
		Type:   typeFilters[m.typeIdx],
	}

	if m.categoryIdx > 0 && m.categoryIdx <= len(m.categories) {
		q.Category = report.CategoryID(m.categories[m.categoryIdx-1].ID)
	}

	return q
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesMsg:
		if msg.err != nil {
			m.err = msg.err
		}

		m.categories = msg.categories

		return m, nil

	case PeriodSelectedMsg:
		m.descriptor = msg.Descriptor
		m.state = reportStateResult
		m.loading = true

		return m, m.aggregateCmd(m.query())

	case reportMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.result = msg.result
			m.refreshTables()
		}

		return m, nil
	}

	switch m.state {
	case reportStatePeriod:
		return m.updatePeriod(msg)
	case reportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ReportModel) updatePeriod(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ReportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "p":
			m.state = reportStatePeriod
			m.picker.Reset()

			return m, nil
		case "t":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			m.loading = true

			return m, m.aggregateCmd(m.query())
		case "c":
			m.categoryIdx = (m.categoryIdx + 1) % (len(m.categories) + 1)
			m.loading = true

			return m, m.aggregateCmd(m.query())
		case "r":
			m.loading = true
			return m, m.aggregateCmd(m.query())
		}
	}

	var cmd tea.Cmd
	m.txTable, cmd = m.txTable.Update(msg)

	return m, cmd
}

func (m *ReportModel) refreshTables() {
	rows := make([]table.Row, 0, len(m.result.CategoryBreakdown))
	for _, c := range m.result.CategoryBreakdown {
		rows = append(rows, table.Row{
			c.Category,
			FormatAmount(c.Entree),
			FormatAmount(c.Sortie),
			FormatAmount(c.Balance),
		})
	}

	m.breakdown.SetRows(rows)

	txRows := make([]table.Row, 0, len(m.result.Transactions))
	for _, tx := range m.result.Transactions {
		txRows = append(txRows, table.Row{
			FormatDate(tx.Timestamp),
			tx.Category,
			FormatSigned(tx),
			labelOf(tx),
		})
	}

	m.txTable.SetRows(txRows)
}

func (m ReportModel) categoryLabel() string {
	if m.categoryIdx == 0 || m.categoryIdx > len(m.categories) {
		return "Toutes"
	}

	return m.categories[m.categoryIdx-1].Name
}

func (m ReportModel) View() string {
	if m.state == reportStatePeriod {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Calcul du rapport...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Erreur: %v", m.err)))
	}

	if m.result == nil {
		return ""
	}

	res := m.result

	header := fmt.Sprintf(
		"%s  %s → %s\n[t] Type: %s | [c] Catégorie: %s",
		activeStyle(m.descriptor.Period.Label()),
		FormatDate(res.Range.Start),
		FormatDate(res.Range.End),
		activeStyle(string(res.Type)),
		activeStyle(m.categoryLabel()),
	)

	totals := fmt.Sprintf(
		"Entrées: %s   Sorties: %s   Solde: %s   (%d transactions)",
		FormatAmount(res.Totals.Entree),
		FormatAmount(res.Totals.Sortie),
		lipgloss.NewStyle().Bold(true).Render(FormatAmount(res.Balance)),
		len(res.Transactions),
	)

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			totals,
			"",
			boxed(m.breakdown.View()),
			boxed(m.txTable.View()),
		),
	)
}

// Messages

type categoriesMsg struct {
	categories []*transaction.Category
	err        error
}

func (m ReportModel) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.txService.Categories(ctx)
		return categoriesMsg{categories: cats, err: err}
	}
}

type reportMsg struct {
	result *report.Result
	err    error
}

func (m ReportModel) aggregateCmd(q report.Query) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.engine.Aggregate(ctx, q)
		return reportMsg{result: res, err: err}
	}
}
