package view

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ecolefin/internal/importer"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStatePreview
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	txService     *transaction.Service
	names         map[int64]string

	state      importState
	filePicker filepicker.Model
	path       string

	batch   *importer.Batch
	preview table.Model

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, txSvc *transaction.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	preview := newTable([]table.Column{
		{Title: "Date", Width: 17},
		{Title: "Type", Width: 7},
		{Title: "Catégorie", Width: 20},
		{Title: "Montant", Width: 14},
		{Title: "Libellé", Width: 36},
	}, 12, true)

	return ImportModel{
		importService: impSvc,
		txService:     txSvc,
		names:         make(map[int64]string),
		filePicker:    fp,
		preview:       preview,
	}
}

func (m ImportModel) Title() string { return "Importer un relevé" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return tea.Batch(m.filePicker.Init(), m.loadCategoriesCmd())
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case categoriesMsg:
		for _, c := range msg.categories {
			m.names[c.ID] = c.Name
		}

		return m, nil

	case prepareResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Erreur: %v", msg.err)

			return m, nil
		}

		m.batch = msg.batch
		m.state = importStatePreview
		m.refreshPreview()

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Erreur: %v", msg.err)

			return m, nil
		}

		m.batch = msg.batch
		m.status = fmt.Sprintf("%d transactions importées, %d lignes ignorées.",
			len(msg.batch.Created), len(msg.batch.Skipped))

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStateImporting
		m.status = fmt.Sprintf("Lecture de %s...", path)

		return m, m.prepareCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.batch = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Import de %s...", m.path)

		return m, m.importCmd(m.path)
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m *ImportModel) refreshPreview() {
	rows := make([]table.Row, 0, len(m.batch.Params))
	for _, p := range m.batch.Params {
		tx := &transaction.Transaction{Amount: p.Amount, Kind: p.Kind}

		label := ""
		if p.Label != nil {
			label = *p.Label
		}

		rows = append(rows, table.Row{
			FormatDate(p.Timestamp),
			string(p.Kind),
			m.categoryName(p.CategoryID),
			FormatSigned(tx),
			label,
		})
	}

	m.preview.SetRows(rows)
}

func (m ImportModel) categoryName(id int64) string {
	if name, ok := m.names[id]; ok {
		return name
	}

	return "#" + strconv.FormatInt(id, 10)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Choisir le fichier CSV à importer:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return m.viewPreview()
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewPreview() string {
	header := fmt.Sprintf("Format: %s | Encodage: %s | %d lignes prêtes",
		activeStyle(m.batch.Profile), activeStyle(string(m.batch.Charset)), len(m.batch.Params))

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			boxed(m.preview.View()),
			m.viewSkipped(),
		),
	)
}

func (m ImportModel) viewSkipped() string {
	if m.batch == nil || len(m.batch.Skipped) == 0 {
		return ""
	}

	s := "\nLignes ignorées:\n"
	for _, skip := range m.batch.Skipped {
		s += fmt.Sprintf("  ligne %d: %s\n", skip.Line, skip.Reason)
	}

	return lipgloss.NewStyle().Faint(true).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc pour revenir)")
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
			m.viewSkipped() +
			"\n\n(Esc pour revenir)",
	)
}

// Messages

type prepareResultMsg struct {
	batch *importer.Batch
	err   error
}

type importResultMsg struct {
	batch *importer.Batch
	err   error
}

func (m ImportModel) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.txService.Categories(ctx)
		return categoriesMsg{categories: cats, err: err}
	}
}

func (m ImportModel) prepareCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return prepareResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		batch, err := m.importService.Prepare(ctx, f)
		return prepareResultMsg{batch: batch, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		batch, err := m.importService.Import(ctx, f)
		return importResultMsg{batch: batch, err: err}
	}
}
