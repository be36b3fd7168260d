package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Fold duplicate records into their canonical entry",
	Run:   runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) {
	app := mustImporter()
	ctx := context.Background()
	defer shutdown(app)

	report, err := app.Reconcile(ctx)
	if err != nil {
		slog.Error("Reconcile failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Reconcile finished",
		"processed", report.Processed,
		"merged", report.Merged,
		"deleted", report.Deleted,
		"errors", report.Errors)
}
