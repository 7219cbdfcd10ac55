// Package main is the entry point for the Claude quota monitor TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/claude-quota-tui/internal/app"
	"github.com/j-veylop/claude-quota-tui/internal/config"
	"github.com/j-veylop/claude-quota-tui/internal/logger"
	"github.com/j-veylop/claude-quota-tui/internal/services"
	"github.com/j-veylop/claude-quota-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/claude-quota-tui/internal/ui/tabs/history"
	"github.com/j-veylop/claude-quota-tui/internal/ui/tabs/info"
	"github.com/j-veylop/claude-quota-tui/internal/ui/tabs/sessions"
	"github.com/j-veylop/claude-quota-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Route structured logs away from the terminal the TUI draws on
	if err := logger.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}

	// 3. Initialize the service manager
	// This starts the refresh loop, the data-dir watcher and the history store
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 5. Initialize tabs with shared state and services
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state, svcManager), // Tab 0: live session and burn rate
		sessions.New(svcManager),         // Tab 1: session block history
		history.New(svcManager),          // Tab 2: bucketed usage series
		info.New(state, cfg, svcManager), // Tab 3: configuration and diagnostics
	}
	model.SetTabs(tabs)

	// 6. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 7. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	// 8. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 9. Run the TUI program
	// This blocks until the user quits or an error occurs
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	// A fatal service event quits from inside the program loop. Surface it
	// once the terminal is restored.
	if m, ok := finalModel.(*app.Model); ok {
		if fatalErr := m.FatalError(); fatalErr != nil {
			return fatalErr
		}
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Claude Quota TUI - Terminal monitor for Claude usage limits

Usage:
  cqt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Dashboard, Sessions, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll
  t               Cycle history time range
  m               Toggle history metric
  r               Force refresh
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  PLAN              Quota plan: pro, max5, max20 or auto (default: pro)
  TIMEZONE          IANA timezone for reset times (default: Europe/Warsaw)
  RESET_HOUR        Custom daily reset hour 0-23 (default: built-in cycle)
  REFRESH_INTERVAL  Usage polling interval (default: 3s)
  SOURCE_TIMEOUT    Per-fetch timeout (default: 8s)
  CACHE_CAPACITY    Report cache entries (default: 500)
  CACHE_TTL         Report cache base TTL (default: 5s)
  DATA_DIRS         Comma-separated Claude data directories
  LOG_LEVEL         debug, info, warn or error (default: info)
  LOG_FILE          Structured log destination (default: stderr)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/claude-quota-tui/.env
  - ~/.claude-quota-tui/.env

For more information, visit: https://github.com/j-veylop/claude-quota-tui`)
}
