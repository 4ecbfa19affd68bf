// Package main is the entry point for the modpay TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mbridges/modpay-tui/internal/app"
	"github.com/mbridges/modpay-tui/internal/config"
	"github.com/mbridges/modpay-tui/internal/logger"
	"github.com/mbridges/modpay-tui/internal/services"
	"github.com/mbridges/modpay-tui/internal/services/revenue"
	"github.com/mbridges/modpay-tui/internal/ui/components"
	"github.com/mbridges/modpay-tui/internal/ui/tabs/dashboard"
	"github.com/mbridges/modpay-tui/internal/ui/tabs/debug"
	"github.com/mbridges/modpay-tui/internal/ui/tabs/history"
	"github.com/mbridges/modpay-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if len(os.Args) > 1 && os.Args[1] == "--once" {
		os.Exit(runOnce())
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runOnce performs a single headless reconciliation and prints the
// result. Exit code 0 on success (including degraded), 1 on failure,
// 2 when authentication is needed.
func runOnce() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer mgr.Close()

	combined, err := mgr.SyncOnce(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
		if errors.Is(err, revenue.ErrUnauthenticated) {
			return 2
		}
		return 1
	}

	fmt.Printf("Total: %s", components.FormatMoney(combined.TotalConverted, combined.Currency))
	if combined.Degraded {
		fmt.Print(" (degraded)")
	}
	fmt.Println()
	fmt.Printf("Last 24h: %s\n", components.FormatDelta(combined.Last24hConverted, combined.Currency))
	if combined.SnapshotWritten {
		fmt.Println("Snapshot recorded")
	}
	return 0
}

// run contains the interactive application logic.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The alt screen owns stdout, so logs go to a file while the TUI
	// runs.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		logger.SetOutput(logFile)
		defer logFile.Close()
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	model := app.NewModel(mgr)

	state := model.GetState()
	commands := model.GetCommands()
	tabs := []app.Tab{
		dashboard.New(state, commands),
		history.New(state, commands),
		debug.New(state, commands, cfg),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`modpay - Mod revenue tracker for Modrinth and CurseForge

Usage:
  modpay [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information
  --once          Run a single sync and exit (for cron or scripts)

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Debug)
  Tab/Shift+Tab   Navigate between tabs
  Left/Right      Change week on the history tab
  r               Sync now
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  MODRINTH_TOKEN     Modrinth API token (overrides the session file)
  TARGET_CURRENCY    Display currency, e.g. EUR (default: USD)
  SYNC_INTERVAL      Background sync interval (default: 1h, min 15m, max 6h)
  DATABASE_PATH      SQLite database path
  SESSION_PATH       Captured session JSON path
  WIDGET_PATH        Status widget JSON output path
  RETENTION_DAYS     Days of snapshot history to keep (default: 365)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/modpay/.env
  - ~/.modpay/.env`)
}
