// Package backup serializes the whole store to a single JSON document and
// restores from one, for device moves and off-device safekeeping.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
	"github.com/rfujimura/koden-tracker/internal/repository"
)

// Version is bumped when the backup document shape changes.
const Version = 1

// File is the top-level backup document.
type File struct {
	Version    int                  `json:"version"`
	ExportedAt time.Time            `json:"exported_at"`
	Funerals   []FuneralWithRecords `json:"funerals"`
}

// FuneralWithRecords is a funeral with its donations inlined.
type FuneralWithRecords struct {
	entity.Funeral
	Donations []*entity.Donation `json:"donations"`
}

type Service struct {
	db            *repository.DB
	funeralsRepo  repository.FuneralRepository
	donationsRepo repository.DonationRepository
	schema        *jsonschema.Schema
	logger        *slog.Logger
}

func NewService(db *repository.DB, funerals repository.FuneralRepository, donations repository.DonationRepository, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("backup.schema.json", strings.NewReader(backupSchema)); err != nil {
		return nil, fmt.Errorf("add backup schema: %w", err)
	}
	schema, err := compiler.Compile("backup.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile backup schema: %w", err)
	}
	return &Service{
		db:            db,
		funeralsRepo:  funerals,
		donationsRepo: donations,
		schema:        schema,
		logger:        logger,
	}, nil
}

// Export serializes every funeral and its donations.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	funerals, err := s.funeralsRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := File{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Funerals:   make([]FuneralWithRecords, 0, len(funerals)),
	}
	for _, f := range funerals {
		donations, err := s.donationsRepo.ListByFuneral(ctx, f.ID, nil)
		if err != nil {
			return nil, err
		}
		if donations == nil {
			donations = []*entity.Donation{}
		}
		out.Funerals = append(out.Funerals, FuneralWithRecords{Funeral: *f, Donations: donations})
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	s.logger.Info("backup.export.ok", "funerals", len(out.Funerals))
	return raw, nil
}

// Import validates a backup document and inserts its contents. Existing
// rows are untouched; imported rows get fresh identifiers, so importing
// the same file twice duplicates its records rather than corrupting them.
func (s *Service) Import(ctx context.Context, raw []byte) (funerals, donations int, err error) {
	var doc any
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		return 0, 0, common.NewAppError("BACKUP_PARSE", "backup is not valid JSON", common.ErrValidation)
	}
	if err := s.schema.Validate(doc); err != nil {
		s.logger.Warn("backup validation failed", "error", err)
		return 0, 0, common.NewAppError("BACKUP_INVALID", err.Error(), common.ErrValidation)
	}

	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return 0, 0, common.NewAppError("BACKUP_PARSE", "backup does not match the expected shape", common.ErrValidation)
	}
	if file.Version > Version {
		return 0, 0, common.NewAppError("BACKUP_VERSION",
			fmt.Sprintf("backup version %d is newer than supported %d", file.Version, Version), common.ErrValidation)
	}

	for _, fw := range file.Funerals {
		n, err := s.importFuneral(ctx, fw)
		if err != nil {
			return funerals, donations, err
		}
		funerals++
		donations += n
	}

	s.logger.Info("backup.import.ok", "funerals", funerals, "donations", donations)
	return funerals, donations, nil
}

// importFuneral inserts one funeral and its donations in a single
// transaction, so a failure part way through leaves no orphaned rows.
func (s *Service) importFuneral(ctx context.Context, fw FuneralWithRecords) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	funeralsRepo := s.funeralsRepo.WithTx(tx)
	donationsRepo := s.donationsRepo.WithTx(tx)

	funeral := fw.Funeral
	funeral.ID = uuid.Nil
	if !funeral.Status.Valid() {
		funeral.Status = constants.EventStatusCompleted
	}
	created, err := funeralsRepo.Create(ctx, &funeral)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range fw.Donations {
		donation := *d
		donation.ID = uuid.Nil
		donation.FuneralID = created.ID
		if _, err := donationsRepo.Create(ctx, &donation); err != nil {
			return 0, err
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import transaction: %w", err)
	}
	return count, nil
}
