package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ecolefin/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/ecolefin/internal/config"
	"github.com/MrJamesThe3rd/ecolefin/internal/dashboard"
	"github.com/MrJamesThe3rd/ecolefin/internal/database"
	"github.com/MrJamesThe3rd/ecolefin/internal/export"
	"github.com/MrJamesThe3rd/ecolefin/internal/importer"
	"github.com/MrJamesThe3rd/ecolefin/internal/logging"
	"github.com/MrJamesThe3rd/ecolefin/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/ecolefin/internal/matching/store"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
	txStore "github.com/MrJamesThe3rd/ecolefin/internal/transaction/store"
)

const logFile = "ecolefin-tui.log"

type model struct {
	appName       string
	recentLimit   int
	resolver      *period.Resolver
	txService     *transaction.Service
	importService *importer.Service
	exportService *export.Service
	engine        report.Aggregator
	composer      *dashboard.Composer

	currentView View

	dashboardView view.DashboardModel
	reportView    view.ReportModel
	listView      view.ListModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewReport    View = 2
	ViewList      View = 3
	ViewImport    View = 4
	ViewExport    View = 5
)

func initialModel() (model, func(), error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return model{}, nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return model{}, nil, fmt.Errorf("loading config: %w", err)
	}

	// Anything written to the terminal would corrupt the UI.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return model{}, nil, fmt.Errorf("opening log file: %w", err)
	}

	if err := logging.Setup(f, cfg.Log.Level, cfg.Log.Format, cfg.App.Name); err != nil {
		f.Close()
		return model{}, nil, fmt.Errorf("configuring logging: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		f.Close()
		return model{}, nil, fmt.Errorf("loading timezone: %w", err)
	}

	dialect, err := cfg.Dialect()
	if err != nil {
		f.Close()
		return model{}, nil, err
	}

	db, err := database.New(dialect, cfg.ConnectionString())
	if err != nil {
		f.Close()
		return model{}, nil, fmt.Errorf("connecting to database: %w", err)
	}

	cleanup := func() {
		db.Close()
		f.Close()
	}

	resolver := period.NewResolver(period.SystemClock, loc)

	var (
		txSvc    = transaction.NewService(txStore.New(db, dialect, loc), resolver.Now)
		matchSvc = matching.NewService(matchingStore.New(db, dialect, resolver.Now), txSvc)
		impSvc   = importer.NewService(txSvc, matchSvc, nil, loc)
		engine   = report.NewEngine(txSvc, resolver)
	)

	return model{
		appName:       cfg.App.Name,
		recentLimit:   cfg.App.RecentLimit,
		resolver:      resolver,
		txService:     txSvc,
		importService: impSvc,
		exportService: export.NewService(),
		engine:        engine,
		composer:      dashboard.NewComposer(engine),
		currentView:   ViewMenu,
	}, cleanup, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.composer)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.engine, m.txService, m.resolver)

				return m, m.reportView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService, m.resolver, m.recentLimit)

				return m, m.listView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.txService)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.engine, m.exportService, m.resolver)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Tableau de bord\n" +
				"2. Rapport par période\n" +
				"3. Transactions récentes\n" +
				"4. Importer un relevé CSV\n" +
				"5. Exporter vers Excel\n\n" +
				"q. Quitter",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewReport:
		return m.reportView.View()
	case ViewList:
		return m.listView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	m, cleanup, err := initialModel()
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		cleanup()
		os.Exit(1)
	}
}
