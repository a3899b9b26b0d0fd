package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"adpulse/internal/api"
	"adpulse/internal/config"
	"adpulse/internal/store"
	"adpulse/internal/ui"
	"adpulse/internal/util"
)

const restoredTurns = 20

func main() {
	cfgPath := flag.String("config", "adpulse.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(logFile, cfg.Logging.Level)
	util.SetDefault(logger)

	history, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening history database: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), logger)

	ctx := context.Background()
	seed, err := history.LatestSnapshot(ctx)
	if err != nil {
		logger.Warn("reading stored snapshot", "error", err)
	}
	turns, err := history.RecentTurns(ctx, restoredTurns)
	if err != nil {
		logger.Warn("reading conversation history", "error", err)
	}

	model := ui.New(client, history, logger, seed, ui.Options{
		RotationInterval: cfg.UI.RotationInterval(),
		AutoRefresh:      cfg.UI.AutoRefresh(),
		SyncDateRange:    cfg.Sync.DateRange,
	})
	model.RestoreTurns(turns)

	logger.Info("starting dashboard", "backend", cfg.Backend.BaseURL)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "running dashboard: %v\n", err)
		os.Exit(1)
	}
}
