package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"figsiner/internal/config"
	"figsiner/internal/llm"
	"figsiner/internal/scene"
	"figsiner/internal/storage"
	"figsiner/internal/studio"
	"figsiner/internal/tokens"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "figsiner",
		Short: "Generate and edit web page sections from natural language",
	}
	cfgPath string
	dbPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the workspace database (SQLite), overrides the config")

	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(framesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// workspace is everything a command needs: the loaded page, the store and
// the studio driving them.
type workspace struct {
	cfg    *config.Config
	store  *storage.SQLiteStore
	host   *scene.MemoryHost
	studio *studio.Studio
}

func (w *workspace) Close() { w.store.Close() }

// openWorkspace loads the config, opens the store and restores the page.
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	path := cfg.Storage.Path
	if dbPath != "" {
		path = dbPath
	}
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	table, err := tokens.Load(cfg.Design.Tokens)
	if err != nil {
		store.Close()
		return nil, err
	}
	catalog, err := scene.LoadCatalog(cfg.Design.Catalog)
	if err != nil {
		store.Close()
		return nil, err
	}

	host := scene.NewMemoryHost(scene.WithComponents(catalog.Components()...))
	if err := store.LoadPage(ctx, host.Page()); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	st := studio.New(host,
		studio.SettingsSource(cfg.Model, store, nil),
		llm.NewPromptBuilder(table.JSON(), catalog.JSON()),
		studio.WithStore(store),
		studio.WithTokens(table),
		studio.WithLogger(logger),
	)
	return &workspace{cfg: cfg, store: store, host: host, studio: st}, nil
}

func mustWorkspace(ctx context.Context) *workspace {
	ws, err := openWorkspace(ctx)
	if err != nil {
		log.Fatalf("Failed to open workspace: %v", err)
	}
	return ws
}
