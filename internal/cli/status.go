package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/courier/internal/core/config"
	"github.com/vietddude/courier/internal/infra/journal"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent delivery outcomes from the journal",
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
	if cfg.Database.URL == "" {
		slog.Error("status requires a PostgreSQL journal (database.url)")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := journal.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repo := journal.NewPostgresRepo(db)

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		slog.Error("Failed to query journal", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STATUS\tCOUNT")
	for status, count := range counts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", status, count)
	}
	_ = w.Flush()

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		slog.Error("Failed to query recent deliveries", "error", err)
		os.Exit(1)
	}

	_, _ = fmt.Fprintln(w, "\nKEY\tSTATUS\tATTEMPTS\tFINISHED")
	for _, rec := range recent {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			rec.PayloadKey, rec.Status, rec.AttemptsUsed, rec.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
