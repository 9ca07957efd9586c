package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
)

// ListDonationsFilter narrows ListByFuneral. Nil bounds mean unbounded;
// an empty Query matches everything.
type ListDonationsFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Query    string
}

type DonationRepository interface {
	Create(ctx context.Context, d *entity.Donation) (*entity.Donation, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Donation, error)
	ListByFuneral(ctx context.Context, funeralID uuid.UUID, filter *ListDonationsFilter) ([]*entity.Donation, error)
	Update(ctx context.Context, d *entity.Donation) (*entity.Donation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *sql.Tx) DonationRepository
}

type donationRepository struct {
	db     *DB
	q      querier
	logger *slog.Logger
}

func NewDonationRepository(db *DB, logger *slog.Logger) DonationRepository {
	return &donationRepository{
		db:     db,
		q:      db.SQL,
		logger: logger,
	}
}

// WithTx returns a copy of the repository that runs every statement
// inside the given transaction.
func (r *donationRepository) WithTx(tx *sql.Tx) DonationRepository {
	return &donationRepository{db: r.db, q: tx, logger: r.logger}
}

const donationColumns = `id, funeral_id, full_name, last_name, first_name, relationship, address, amount,
	enclosed_amount, donation_type, donation_category, company_name, position, co_names, notes, ocr_results,
	ocr_provider, created_at, updated_at`

func (r *donationRepository) Create(ctx context.Context, d *entity.Donation) (*entity.Donation, error) {
	now := time.Now().UTC()
	out := *d
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	out.CreatedAt = now
	out.UpdatedAt = now

	coNames, ocrResults, err := marshalDonationJSON(&out)
	if err != nil {
		return nil, err
	}

	query := r.db.rebind(`INSERT INTO donations (` + donationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.q.ExecContext(ctx, query,
		out.ID.String(), out.FuneralID.String(), out.FullName, out.LastName, out.FirstName,
		out.Relationship, out.Address, out.Amount, out.EnclosedAmount, out.DonationType,
		out.DonationCategory, out.CompanyName, out.Position, coNames, out.Notes, ocrResults,
		out.OCRProvider, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create donation", "funeral_id", out.FuneralID, "error", err)
		return nil, common.WrapError(err, "create donation")
	}
	return &out, nil
}

func (r *donationRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Donation, error) {
	query := r.db.rebind(`SELECT ` + donationColumns + ` FROM donations WHERE id = ?`)
	row := r.q.QueryRowContext(ctx, query, id.String())
	d, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundError("donation not found")
	}
	if err != nil {
		r.logger.Error("failed to get donation", "donation_id", id, "error", err)
		return nil, common.WrapError(err, "get donation")
	}
	return d, nil
}

func (r *donationRepository) ListByFuneral(ctx context.Context, funeralID uuid.UUID, filter *ListDonationsFilter) ([]*entity.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE funeral_id = ?`
	args := []any{funeralID.String()}
	if filter != nil && filter.FromDate != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.FromDate)
	}
	if filter != nil && filter.ToDate != nil {
		query += ` AND created_at <= ?`
		args = append(args, *filter.ToDate)
	}
	if filter != nil && filter.Query != "" {
		query += ` AND (full_name LIKE ? OR company_name LIKE ? OR address LIKE ?
			OR co_names LIKE ? OR notes LIKE ? OR CAST(amount AS TEXT) LIKE ?)`
		like := "%" + filter.Query + "%"
		args = append(args, like, like, like, like, like, like)
	}
	query += ` ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to list donations", "funeral_id", funeralID, "error", err)
		return nil, common.WrapError(err, "list donations")
	}
	defer rows.Close()

	var out []*entity.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan donation")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *donationRepository) Update(ctx context.Context, d *entity.Donation) (*entity.Donation, error) {
	out := *d
	out.UpdatedAt = time.Now().UTC()

	coNames, ocrResults, err := marshalDonationJSON(&out)
	if err != nil {
		return nil, err
	}

	query := r.db.rebind(`UPDATE donations SET full_name = ?, last_name = ?, first_name = ?, relationship = ?,
		address = ?, amount = ?, enclosed_amount = ?, donation_type = ?, donation_category = ?,
		company_name = ?, position = ?, co_names = ?, notes = ?, ocr_results = ?, ocr_provider = ?,
		updated_at = ? WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, query,
		out.FullName, out.LastName, out.FirstName, out.Relationship, out.Address,
		out.Amount, out.EnclosedAmount, out.DonationType, out.DonationCategory, out.CompanyName,
		out.Position, coNames, out.Notes, ocrResults, out.OCRProvider, out.UpdatedAt,
		out.ID.String())
	if err != nil {
		r.logger.Error("failed to update donation", "donation_id", out.ID, "error", err)
		return nil, common.WrapError(err, "update donation")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, common.NotFoundError("donation not found")
	}
	return &out, nil
}

func (r *donationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.rebind(`DELETE FROM donations WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, query, id.String())
	if err != nil {
		r.logger.Error("failed to delete donation", "donation_id", id, "error", err)
		return common.WrapError(err, "delete donation")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NotFoundError("donation not found")
	}
	return nil
}

func marshalDonationJSON(d *entity.Donation) (coNames, ocrResults string, err error) {
	names := d.CoNames
	if names == nil {
		names = []string{}
	}
	nb, err := json.Marshal(names)
	if err != nil {
		return "", "", common.WrapError(err, "marshal co_names")
	}
	results := d.OCRResults
	if results == nil {
		results = entity.FaceTexts{}
	}
	ob, err := json.Marshal(results)
	if err != nil {
		return "", "", common.WrapError(err, "marshal ocr_results")
	}
	return string(nb), string(ob), nil
}

func scanDonation(row rowScanner) (*entity.Donation, error) {
	var (
		d          entity.Donation
		id         string
		funeralID  string
		coNames    string
		ocrResults string
	)
	err := row.Scan(&id, &funeralID, &d.FullName, &d.LastName, &d.FirstName, &d.Relationship,
		&d.Address, &d.Amount, &d.EnclosedAmount, &d.DonationType, &d.DonationCategory,
		&d.CompanyName, &d.Position, &coNames, &d.Notes, &ocrResults, &d.OCRProvider,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if d.FuneralID, err = uuid.Parse(funeralID); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(coNames), &d.CoNames); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ocrResults), &d.OCRResults); err != nil {
		return nil, err
	}
	return &d, nil
}
