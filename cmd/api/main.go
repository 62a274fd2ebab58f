package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ilara/internal/app"
	"github.com/MrJamesThe3rd/ilara/internal/config"
	ilaraHttp "github.com/MrJamesThe3rd/ilara/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/ilara/internal/http/category"
	importHandler "github.com/MrJamesThe3rd/ilara/internal/http/importcsv"
	ledgerHandler "github.com/MrJamesThe3rd/ilara/internal/http/ledger"
	productHandler "github.com/MrJamesThe3rd/ilara/internal/http/product"
	saleHandler "github.com/MrJamesThe3rd/ilara/internal/http/sale"
	summaryHandler "github.com/MrJamesThe3rd/ilara/internal/http/summary"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(app.NewLogger(cfg, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := ilaraHttp.New(ilaraHttp.Options{
		Timeout:       cfg.Server.Timeout,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		RateLimit:     cfg.Server.RateLimit,
	}, a.Metrics, ilaraHttp.Handlers{
		Products:   productHandler.NewHandler(a.Catalog, a.POS, a.Summary.Threshold()),
		Categories: categoryHandler.NewHandler(a.Catalog),
		Sales:      saleHandler.NewHandler(a.POS),
		Ledger:     ledgerHandler.NewHandler(a.Ledger, a.POS, a.Location),
		Summary:    summaryHandler.NewHandler(a.Summary),
		Import:     importHandler.NewHandler(a.Importer),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "app", cfg.App.Name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			a.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}
