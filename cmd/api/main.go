package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ecolefin/internal/config"
	"github.com/MrJamesThe3rd/ecolefin/internal/dashboard"
	"github.com/MrJamesThe3rd/ecolefin/internal/database"
	"github.com/MrJamesThe3rd/ecolefin/internal/export"
	ecoleHttp "github.com/MrJamesThe3rd/ecolefin/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/ecolefin/internal/http/category"
	dashboardHandler "github.com/MrJamesThe3rd/ecolefin/internal/http/dashboard"
	exportHandler "github.com/MrJamesThe3rd/ecolefin/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/ecolefin/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/ecolefin/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/ecolefin/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/ecolefin/internal/http/transaction"
	"github.com/MrJamesThe3rd/ecolefin/internal/importer"
	"github.com/MrJamesThe3rd/ecolefin/internal/logging"
	"github.com/MrJamesThe3rd/ecolefin/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/ecolefin/internal/matching/store"
	"github.com/MrJamesThe3rd/ecolefin/internal/metrics"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
	txStore "github.com/MrJamesThe3rd/ecolefin/internal/transaction/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format, cfg.App.Name); err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	dialect, err := cfg.Dialect()
	if err != nil {
		slog.Error("invalid database driver", "error", err)
		os.Exit(1)
	}

	db, err := database.New(dialect, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		resolver = period.NewResolver(period.SystemClock, loc)
		recorder = metrics.NewRecorder()
	)

	var (
		transactionService = transaction.NewService(txStore.New(db, dialect, loc), resolver.Now)
		matchingService    = matching.NewService(matchingStore.New(db, dialect, resolver.Now), transactionService)
		importService      = importer.NewService(transactionService, matchingService, recorder, loc)
		engine             = metrics.Instrument(report.NewEngine(transactionService, resolver), recorder)
		composer           = dashboard.NewComposer(engine)
	)

	router := ecoleHttp.New(ecoleHttp.Handlers{
		Transactions: txHandler.NewHandler(transactionService, resolver, cfg.App.RecentLimit),
		Categories:   categoryHandler.NewHandler(transactionService),
		Reports:      reportHandler.NewHandler(engine),
		Export:       exportHandler.NewHandler(engine, export.NewService()),
		Dashboard:    dashboardHandler.NewHandler(composer),
		Import:       importHandler.NewHandler(importService),
		Matching:     matchingHandler.NewHandler(matchingService),
		Metrics:      recorder.Handler(),
	}, ecoleHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port, "driver", dialect, "timezone", loc.String())

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
