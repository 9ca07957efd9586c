// koden-export writes a funeral's donation report to EXPORT_DIR without
// going through the HTTP API.
//
//	koden-export -format xlsx FUNERAL_ID
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/export"
	repo "github.com/rfujimura/koden-tracker/internal/repository"
)

func main() {
	format := flag.String("format", "xlsx", "output format: xlsx or csv")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Println("usage: koden-export [-format xlsx|csv] FUNERAL_ID")
		os.Exit(2)
	}
	funeralID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		log.Fatalf("FUNERAL_ID must be a UUID: %v", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	db, err := repo.Open(ctx, repo.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer db.Close(logger)

	funerals := repo.NewFuneralRepository(db, logger)
	donations := repo.NewDonationRepository(db, logger)
	svc := export.NewService(funerals, donations, logger)

	var raw []byte
	switch *format {
	case "xlsx":
		raw, err = svc.ExportXLSX(ctx, funeralID, nil, nil)
	case "csv":
		raw, err = svc.ExportCSV(ctx, funeralID, nil, nil)
	default:
		log.Fatalf("format must be xlsx or csv, got %q", *format)
	}
	if err != nil {
		log.Fatalf("export: %v", err)
	}

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		log.Fatalf("creating export dir: %v", err)
	}
	name := filepath.Join(cfg.Export.Dir, fmt.Sprintf("koden-%s.%s", funeralID, *format))
	if err := os.WriteFile(name, raw, 0o644); err != nil {
		log.Fatalf("writing %s: %v", name, err)
	}
	log.Printf("wrote %s (%d bytes)", name, len(raw))
}
