package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/herbarium/florasync/internal/core/config"
	"github.com/herbarium/florasync/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog counts by status and provider coverage",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx, `
		SELECT status,
			COUNT(*),
			COUNT(trefle_id),
			COUNT(perenual_id)
		FROM herbs
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		slog.Error("Failed to query herbs", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = rows.Close()
	}()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STATUS\tCOUNT\tTREFLE\tPERENUAL")

	for rows.Next() {
		var status string
		var count, trefle, perenual int64
		if err := rows.Scan(&status, &count, &trefle, &perenual); err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", status, count, trefle, perenual)
	}
	_ = w.Flush()
}
