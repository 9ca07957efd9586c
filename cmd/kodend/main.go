package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rfujimura/koden-tracker/internal/backup"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/export"
	"github.com/rfujimura/koden-tracker/internal/pipeline"
	"github.com/rfujimura/koden-tracker/internal/repository"
	"github.com/rfujimura/koden-tracker/internal/server"
	"github.com/rfujimura/koden-tracker/internal/vision"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)

	if err := db.Migrate(ctx, logger); err != nil {
		logger.Error("migrating database", "error", err)
		os.Exit(1)
	}

	funerals := repository.NewFuneralRepository(db, logger)
	donations := repository.NewDonationRepository(db, logger)

	backups, err := backup.NewService(db, funerals, donations, logger)
	if err != nil {
		logger.Error("building backup service", "error", err)
		os.Exit(1)
	}

	recognizer := vision.NewClient(cfg.Vision, logger)
	if cfg.Vision.APIKey != "" {
		if err := recognizer.Validate(ctx); err != nil {
			logger.Warn("vision configuration check failed; capture will degrade", "error", err)
		}
	}
	srv := server.New(server.Deps{
		Logger:    logger,
		Funerals:  funerals,
		Donations: donations,
		Capture:   pipeline.NewCapture(logger, recognizer, funerals, donations),
		Exports:   export.NewService(funerals, donations, logger),
		Backups:   backups,
		DB:        db,
	})

	if err := srv.Run(ctx, cfg.Server); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
