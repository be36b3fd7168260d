package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/herbarium/florasync/internal/control"
)

var (
	importQuery   string
	importPage    int
	importPages   int
	importPerPage int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import plant data from a provider",
}

var importSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Import Trefle plants matching a search query",
	Run:   runImportSearch,
}

var importSpeciesCmd = &cobra.Command{
	Use:   "species",
	Short: "Import Perenual species list pages",
	Run:   runImportSpecies,
}

func init() {
	importSearchCmd.Flags().StringVar(&importQuery, "query", "", "search query (required)")
	_ = importSearchCmd.MarkFlagRequired("query")

	importSpeciesCmd.Flags().IntVar(&importPage, "page", 1, "first page to import")
	importSpeciesCmd.Flags().IntVar(&importPages, "pages", 1, "number of pages to import")
	importSpeciesCmd.Flags().IntVar(&importPerPage, "per-page", 30, "species per page")

	importCmd.AddCommand(importSearchCmd)
	importCmd.AddCommand(importSpeciesCmd)
	rootCmd.AddCommand(importCmd)
}

func runImportSearch(cmd *cobra.Command, args []string) {
	app := mustImporter()
	ctx := context.Background()
	defer shutdown(app)

	report, err := app.ImportSearch(ctx, importQuery)
	if err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Import finished",
		"fetched", report.Fetched,
		"created", report.Created,
		"merged", report.Merged,
		"errors", report.Errors)
}

func runImportSpecies(cmd *cobra.Command, args []string) {
	app := mustImporter()
	ctx := context.Background()
	defer shutdown(app)

	report, err := app.ImportSpecies(ctx, importPage, importPages, importPerPage)
	if err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Import finished",
		"fetched", report.Fetched,
		"created", report.Created,
		"merged", report.Merged,
		"errors", report.Errors)
}

func mustImporter() *control.Importer {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	app, err := control.NewImporter(cfg)
	if err != nil {
		slog.Error("Failed to initialize Importer", "error", err)
		os.Exit(1)
	}
	return app
}

func shutdown(app *control.Importer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		slog.Warn("Error during shutdown", "error", err)
	}
}
