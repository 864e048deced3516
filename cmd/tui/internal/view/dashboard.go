package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ecolefin/internal/dashboard"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
)

type DashboardModel struct {
	CommonModel
	composer *dashboard.Composer

	table   table.Model
	loading bool
	err     error
}

func NewDashboardModel(composer *dashboard.Composer) DashboardModel {
	columns := []table.Column{
		{Title: "Période", Width: 16},
		{Title: "Entrées", Width: 16},
		{Title: "Sorties", Width: 16},
		{Title: "Solde", Width: 16},
	}

	return DashboardModel{
		composer: composer,
		table:    newTable(columns, len(period.Kinds())+1, false),
		loading:  true,
	}
}

func (m DashboardModel) Title() string     { return "Tableau de bord" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.table.SetRows(dashboardRows(msg.totals))
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func dashboardRows(totals map[period.Kind]report.Totals) []table.Row {
	rows := make([]table.Row, 0, len(totals))

	for _, kind := range period.Kinds() {
		t := totals[kind]
		rows = append(rows, table.Row{
			kind.Label(),
			FormatAmount(t.Entree),
			FormatAmount(t.Sortie),
			FormatAmount(t.Balance),
		})
	}

	return rows
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Calcul des totaux...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Erreur: %v", m.err)))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render(m.Title()),
			boxed(m.table.View()),
		),
	)
}

type dashboardMsg struct {
	totals map[period.Kind]report.Totals
	err    error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		totals, err := m.composer.Compose(ctx)
		return dashboardMsg{totals: totals, err: err}
	}
}
