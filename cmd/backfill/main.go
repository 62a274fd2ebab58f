// Command backfill writes structured sale links onto income entries that
// only carry the legacy "Sale:" description. It is safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ilara/internal/app"
	"github.com/MrJamesThe3rd/ilara/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(app.NewLogger(cfg, os.Stdout))

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	report, err := a.POS.BackfillSaleLinks(ctx)
	if err != nil {
		slog.Error("backfill failed", "error", err)
		a.Close()
		os.Exit(1)
	}

	slog.Info("backfill finished",
		"scanned", report.Scanned,
		"linked", len(report.Linked),
		"skipped", len(report.Skipped),
	)
}
