package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekhagen/ettpass/internal/config"
	"github.com/ekhagen/ettpass/internal/store"
	"github.com/ekhagen/ettpass/internal/tui"
)

func main() {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	repo := store.NewRepository(s)
	repo.Load()

	// A brand-new user gets an empty starter plan to rename or fill.
	if len(repo.Plans) == 0 {
		if _, err := repo.CreatePlan("Pass A"); err != nil {
			fmt.Fprintf(os.Stderr, "error seeding starter plan: %v\n", err)
			os.Exit(1)
		}
	}

	app := tui.NewApp(repo, cfg.ExportDir())
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
