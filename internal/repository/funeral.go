package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
)

type FuneralRepository interface {
	Create(ctx context.Context, f *entity.Funeral) (*entity.Funeral, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Funeral, error)
	List(ctx context.Context) ([]*entity.Funeral, error)
	Update(ctx context.Context, f *entity.Funeral) (*entity.Funeral, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *sql.Tx) FuneralRepository
}

type funeralRepository struct {
	db     *DB
	q      querier
	logger *slog.Logger
}

func NewFuneralRepository(db *DB, logger *slog.Logger) FuneralRepository {
	return &funeralRepository{
		db:     db,
		q:      db.SQL,
		logger: logger,
	}
}

// WithTx returns a copy of the repository that runs every statement
// inside the given transaction.
func (r *funeralRepository) WithTx(tx *sql.Tx) FuneralRepository {
	return &funeralRepository{db: r.db, q: tx, logger: r.logger}
}

const funeralColumns = `id, family_name, deceased_name, relationship, funeral_date, venue, notes, status, created_at, updated_at`

func (r *funeralRepository) Create(ctx context.Context, f *entity.Funeral) (*entity.Funeral, error) {
	now := time.Now().UTC()
	out := *f
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.Status == "" {
		out.Status = constants.EventStatusPlanned
	}
	out.CreatedAt = now
	out.UpdatedAt = now

	query := r.db.rebind(`INSERT INTO funerals (` + funeralColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query,
		out.ID.String(), out.FamilyName, out.DeceasedName, out.Relationship,
		out.FuneralDate, out.Venue, out.Notes, string(out.Status),
		out.CreatedAt, out.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create funeral", "error", err)
		return nil, common.WrapError(err, "create funeral")
	}
	return &out, nil
}

func (r *funeralRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Funeral, error) {
	query := r.db.rebind(`SELECT ` + funeralColumns + ` FROM funerals WHERE id = ?`)
	row := r.q.QueryRowContext(ctx, query, id.String())
	f, err := scanFuneral(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundError("funeral not found")
	}
	if err != nil {
		r.logger.Error("failed to get funeral", "funeral_id", id, "error", err)
		return nil, common.WrapError(err, "get funeral")
	}
	return f, nil
}

func (r *funeralRepository) List(ctx context.Context) ([]*entity.Funeral, error) {
	query := `SELECT ` + funeralColumns + ` FROM funerals ORDER BY funeral_date DESC`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list funerals", "error", err)
		return nil, common.WrapError(err, "list funerals")
	}
	defer rows.Close()

	var out []*entity.Funeral
	for rows.Next() {
		f, err := scanFuneral(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan funeral")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *funeralRepository) Update(ctx context.Context, f *entity.Funeral) (*entity.Funeral, error) {
	out := *f
	out.UpdatedAt = time.Now().UTC()

	query := r.db.rebind(`UPDATE funerals SET family_name = ?, deceased_name = ?, relationship = ?,
		funeral_date = ?, venue = ?, notes = ?, status = ?, updated_at = ? WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, query,
		out.FamilyName, out.DeceasedName, out.Relationship, out.FuneralDate,
		out.Venue, out.Notes, string(out.Status), out.UpdatedAt, out.ID.String())
	if err != nil {
		r.logger.Error("failed to update funeral", "funeral_id", out.ID, "error", err)
		return nil, common.WrapError(err, "update funeral")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, common.NotFoundError("funeral not found")
	}
	return &out, nil
}

func (r *funeralRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.rebind(`DELETE FROM funerals WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, query, id.String())
	if err != nil {
		r.logger.Error("failed to delete funeral", "funeral_id", id, "error", err)
		return common.WrapError(err, "delete funeral")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NotFoundError("funeral not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFuneral(row rowScanner) (*entity.Funeral, error) {
	var (
		f      entity.Funeral
		id     string
		status string
	)
	err := row.Scan(&id, &f.FamilyName, &f.DeceasedName, &f.Relationship,
		&f.FuneralDate, &f.Venue, &f.Notes, &status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	f.ID = parsed
	f.Status = constants.EventStatus(status)
	return &f, nil
}
