// Command todokeeper is a terminal todo manager backed by a local SQLite
// store with per-item version history.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/nhle/todokeeper/internal/app"
	"github.com/nhle/todokeeper/internal/logging"
	"github.com/nhle/todokeeper/internal/model"
	"github.com/nhle/todokeeper/internal/service"
	"github.com/nhle/todokeeper/internal/store"
	"github.com/nhle/todokeeper/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	flag.Parse()

	// A missing .env is fine; it only supplies TODOKEEPER_* overrides.
	_ = godotenv.Load()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := store.NewSQLiteStore(cfg.Storage.Path, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	vm, err := version.NewManager(st, version.WithLogger(logger))
	if err != nil {
		return err
	}
	svc := service.New(st, vm, service.WithLogger(logger))

	root := app.New(svc, cfg,
		app.WithConfigPath(*configPath),
		app.WithLogger(logger),
	)
	if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("program exited", "err", err)
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
