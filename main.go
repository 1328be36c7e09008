package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parisxmas/intake-relay/internal/config"
	"github.com/parisxmas/intake-relay/internal/credentials"
	"github.com/parisxmas/intake-relay/internal/handler"
	"github.com/parisxmas/intake-relay/internal/logging"
	"github.com/parisxmas/intake-relay/internal/repository"
	"github.com/parisxmas/intake-relay/internal/router"
	"github.com/parisxmas/intake-relay/internal/service"
	"github.com/parisxmas/intake-relay/internal/sheets"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.Load()

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.GelfAddr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Missing configuration is reported, not fatal: requests fail later
	// with a store error instead.
	if cfg.SpreadsheetID == "" {
		logger.Error("missing GOOGLE_SHEETS_ID (or SHEET_ID)")
	} else {
		logger.Info("using spreadsheet", zap.String("sheet_id", cfg.SpreadsheetID))
	}
	cred, err := credentials.Load(cfg)
	if err != nil {
		logger.Warn("service account credential unavailable", zap.Error(err))
	}

	schemas, err := repository.LoadSchemas(cfg.SchemasPath)
	if err != nil {
		return fmt.Errorf("load tab schemas: %w", err)
	}

	store, err := sheets.New(ctx, cred, sheets.Options{
		SpreadsheetID: cfg.SpreadsheetID,
		Timeout:       cfg.StoreTimeout,
	}, logger.Named("sheets"))
	if err != nil {
		return err
	}

	subSvc := service.NewSubmissionService(schemas, store, logger.Named("submissions"))

	subH := handler.NewSubmissionHandler(subSvc, logger)
	debugH := handler.NewDebugHandler(store, logger)
	if cfg.DebugAuthSecret == "" {
		logger.Info("debug routes disabled (DEBUG_AUTH_SECRET not set)")
	}

	r := router.New(logger, router.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		DebugAuthSecret: cfg.DebugAuthSecret,
	}, subH, debugH)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("intake relay listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
