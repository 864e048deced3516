package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateConfirmDelete
)

// txForm holds the form bindings. It lives on the heap so the huh form keeps
// writing to the same fields while the model is copied around.
type txForm struct {
	editing    int64 // 0 when creating
	categoryID int64
	kind       transaction.Kind
	amount     string
	timestamp  string
	label      string
}

type ListModel struct {
	CommonModel
	txService *transaction.Service
	resolver  *period.Resolver
	limit     int

	state      listState
	table      table.Model
	txs        []*transaction.Transaction
	categories []*transaction.Category
	form       *huh.Form
	fields     *txForm

	loading bool
	err     error
	status  string
}

func NewListModel(txSvc *transaction.Service, resolver *period.Resolver, limit int) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 17},
		{Title: "Type", Width: 7},
		{Title: "Catégorie", Width: 20},
		{Title: "Montant", Width: 14},
		{Title: "Libellé", Width: 36},
	}

	return ListModel{
		txService: txSvc,
		resolver:  resolver,
		limit:     limit,
		table:     newTable(columns, 15, true),
		loading:   true,
	}
}

func (m ListModel) Title() string { return "Transactions récentes" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateConfirmDelete:
		return "y: delete | n: cancel"
	}

	return "Esc: back | n: new | e: edit | d: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.categories = msg.categories
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Erreur: %v", msg.err)
		} else {
			m.status = msg.status
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	case listStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m, nil
}

func (m ListModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterEditMode(nil)
		case "e":
			if tx := m.selected(); tx != nil {
				return m.enterEditMode(tx)
			}

			return m, nil
		case "d":
			if m.selected() != nil {
				m.state = listStateConfirmDelete
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		return m, m.deleteCmd(m.selected())
	case "n", "esc":
		m.state = listStateBrowse
	}

	return m, nil
}

func (m ListModel) enterEditMode(tx *transaction.Transaction) (tea.Model, tea.Cmd) {
	if len(m.categories) == 0 {
		m.status = "Créez d'abord une catégorie."
		return m, nil
	}

	m.fields = &txForm{
		categoryID: m.categories[0].ID,
		kind:       transaction.KindEntree,
	}

	if tx != nil {
		m.fields.editing = tx.ID
		m.fields.categoryID = tx.CategoryID
		m.fields.kind = tx.Kind
		m.fields.amount = tx.Amount.String()
		m.fields.timestamp = tx.Timestamp.Format("2006-01-02T15:04")
		m.fields.label = labelOf(tx)
	}

	options := make([]huh.Option[int64], 0, len(m.categories))
	for _, c := range m.categories {
		options = append(options, huh.NewOption(c.Name, c.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Key("category").
				Title("Catégorie").
				Options(options...).
				Value(&m.fields.categoryID),

			huh.NewSelect[transaction.Kind]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Entrée", transaction.KindEntree),
					huh.NewOption("Sortie", transaction.KindSortie),
				).
				Value(&m.fields.kind),

			huh.NewInput().
				Key("amount").
				Title("Montant").
				Placeholder("0.00").
				Value(&m.fields.amount).
				Validate(validateAmountInput),

			huh.NewInput().
				Key("timestamp").
				Title("Date").
				Description("Vide pour maintenant").
				Placeholder("YYYY-MM-DDTHH:MM").
				Value(&m.fields.timestamp).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					_, err := m.resolver.ParseTime(s)
					return err
				}),

			huh.NewInput().
				Key("label").
				Title("Libellé").
				Value(&m.fields.label),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func validateAmountInput(s string) error {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
	if err != nil {
		return fmt.Errorf("montant invalide")
	}

	if !d.IsPositive() || !d.Equal(d.Truncate(2)) {
		return transaction.ErrInvalidAmount
	}

	return nil
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd(*m.fields)
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Chargement des transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Erreur: %v", m.err)))
	}

	header := fmt.Sprintf("%s (%d dernières)", m.Title(), m.limit)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.state == listStateEdit && m.form != nil {
		title := "Nouvelle transaction"
		if m.fields.editing != 0 {
			title = fmt.Sprintf("Modifier la transaction #%d", m.fields.editing)
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.state == listStateConfirmDelete {
		if tx := m.selected(); tx != nil {
			content += "\n" + activeStyle(fmt.Sprintf(
				"Supprimer %s du %s ? (y/n)", FormatSigned(tx), FormatDate(tx.Timestamp),
			))
		}
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Timestamp),
			string(tx.Kind),
			tx.Category,
			FormatSigned(tx),
			labelOf(tx),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs        []*transaction.Transaction
	categories []*transaction.Category
	err        error
}

func (m ListModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.Recent(ctx, m.limit)
		if err != nil {
			return loadListMsg{err: err}
		}

		cats, err := m.txService.Categories(ctx)
		return loadListMsg{txs: txs, categories: cats, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd(f txForm) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(f.amount), ",", ".", 1))
		if err != nil {
			return listSaveMsg{err: err}
		}

		var ts time.Time
		if strings.TrimSpace(f.timestamp) != "" {
			if ts, err = m.resolver.ParseTime(f.timestamp); err != nil {
				return listSaveMsg{err: err}
			}
		}

		var label *string
		if strings.TrimSpace(f.label) != "" {
			label = new(f.label)
		}

		if f.editing == 0 {
			tx, err := m.txService.Create(ctx, transaction.CreateParams{
				CategoryID: f.categoryID,
				Amount:     amount,
				Kind:       f.kind,
				Timestamp:  ts,
				Label:      label,
			})
			if err != nil {
				return listSaveMsg{err: err}
			}

			return listSaveMsg{status: fmt.Sprintf("Transaction #%d créée.", tx.ID)}
		}

		params := transaction.UpdateParams{
			CategoryID: &f.categoryID,
			Amount:     &amount,
			Kind:       &f.kind,
			Label:      new(f.label),
		}
		if !ts.IsZero() {
			params.Timestamp = &ts
		}

		if _, err := m.txService.Update(ctx, f.editing, params); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("Transaction #%d modifiée.", f.editing)}
	}
}

func (m ListModel) deleteCmd(tx *transaction.Transaction) tea.Cmd {
	if tx == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, tx.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("Transaction #%d supprimée.", tx.ID)}
	}
}
