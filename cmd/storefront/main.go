// cmd/storefront/main.go
//
// Entry point for the storefront TUI. Run it from any directory; it keeps its
// config and session log under ./.storefront.
//
// Flow:
// 1. Create .storefront/ and load config.yaml (+ STOREFRONT_* env)
// 2. Apply -api / -venue flags on top
// 3. Launch the TUI, which fetches the menu and venue banner

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/storefront/internal/config"
	"github.com/kingrea/storefront/internal/tui"
)

func main() {
	apiURL := flag.String("api", "", "catalog API base URL (overrides api.base_url)")
	venueID := flag.String("venue", "", "venue identifier (overrides api.venue_id)")
	projectDir := flag.String("project", "", "directory holding .storefront (defaults to cwd)")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitDir(absoluteProject); err != nil {
		die("init .storefront: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}
	if err := cfg.Override(*apiURL, *venueID); err != nil {
		die("apply flags: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app, err := tui.NewApp(cfg, tui.WithContext(ctx))
	if err != nil {
		die("start storefront: %v", err)
	}

	// Run blocks until the user quits
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		die("Error running TUI: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
