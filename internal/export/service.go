package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
	"github.com/rfujimura/koden-tracker/internal/repository"
)

// Service is a tiny façade over repositories that renders donation lists
// as XLSX, CSV, or an amount-band summary.
type Service struct {
	funeralsRepo  repository.FuneralRepository
	donationsRepo repository.DonationRepository
	logger        *slog.Logger
}

func NewService(funerals repository.FuneralRepository, donations repository.DonationRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{funeralsRepo: funerals, donationsRepo: donations, logger: logger}
}

var headers = []string{
	"お名前",
	"会社名",
	"役職",
	"住所",
	"金額",
	"中袋金額",
	"表書き",
	"区分",
	"連名",
	"備考",
	"続柄",
	"登録日",
}

// list resolves the funeral and its donations for a date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all donations for the funeral.
func (s *Service) list(ctx context.Context, funeralID uuid.UUID, from, to *time.Time) (*entity.Funeral, []*entity.Donation, error) {
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		// inclusive day window
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
		toDate = &t
	}

	funeral, err := s.funeralsRepo.Get(ctx, funeralID)
	if err != nil {
		return nil, nil, err
	}
	donations, err := s.donationsRepo.ListByFuneral(ctx, funeralID, &repository.ListDonationsFilter{
		FromDate: fromDate,
		ToDate:   toDate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("query donations: %w", err)
	}
	return funeral, donations, nil
}

func donationRow(d *entity.Donation) []string {
	coNames := ""
	for i, n := range d.CoNames {
		if i > 0 {
			coNames += "、"
		}
		coNames += n
	}
	relationship := ""
	if d.Relationship != nil {
		relationship = *d.Relationship
	}
	return []string{
		d.DonorDisplayName(),
		d.CompanyName,
		d.Position,
		d.Address,
		strconv.FormatInt(d.Amount, 10),
		strconv.FormatInt(d.EnclosedAmount, 10),
		d.DonationType,
		d.DonationCategory,
		coNames,
		truncate(d.Notes, 140),
		relationship,
		d.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// ExportXLSX returns an XLSX workbook (as bytes) for the given funeral and
// date window.
func (s *Service) ExportXLSX(ctx context.Context, funeralID uuid.UUID, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	funeral, donations, err := s.list(ctx, funeralID, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "香典帳"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	title := fmt.Sprintf("%s家 %s", funeral.FamilyName, funeral.FuneralDate.Format("2006-01-02"))
	_ = f.SetCellValue(sheet, "A1", title)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 3
	var total int64
	for _, d := range donations {
		for col, v := range donationRow(d) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if col == 4 || col == 5 {
				n, _ := strconv.ParseInt(v, 10, 64)
				_ = f.SetCellValue(sheet, cell, n)
			} else {
				_ = f.SetCellValue(sheet, cell, v)
			}
		}
		total += d.Amount
		row++
	}

	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), "合計")
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), total)

	_ = f.SetColWidth(sheet, "A", "A", 18) // name
	_ = f.SetColWidth(sheet, "B", "B", 26) // company
	_ = f.SetColWidth(sheet, "C", "C", 14) // position
	_ = f.SetColWidth(sheet, "D", "D", 36) // address
	_ = f.SetColWidth(sheet, "E", "F", 12) // amounts
	_ = f.SetColWidth(sheet, "J", "J", 48) // notes
	_ = f.SetColWidth(sheet, "L", "L", 17) // created date

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.InternalErrorf("xlsx write: %v", err)
	}

	s.logger.Info("export.xlsx.ok",
		"funeral_id", funeralID.String(),
		"rows", len(donations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportCSV returns the same rows as the workbook in UTF-8 CSV.
func (s *Service) ExportCSV(ctx context.Context, funeralID uuid.UUID, from, to *time.Time) ([]byte, error) {
	_, donations, err := s.list(ctx, funeralID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	// BOM so spreadsheet applications pick up UTF-8
	buf.WriteString("\xEF\xBB\xBF")
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for _, d := range donations {
		if err := w.Write(donationRow(d)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("export.csv.ok", "funeral_id", funeralID.String(), "rows", len(donations))
	return buf.Bytes(), nil
}

// SummaryBand is one amount bracket of the donation summary.
type SummaryBand struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Total int64  `json:"total"`
}

// Summary aggregates the donations of a funeral into the customary
// amount brackets.
type Summary struct {
	FuneralID     uuid.UUID     `json:"funeral_id"`
	FamilyName    string        `json:"family_name"`
	Count         int           `json:"count"`
	TotalAmount   int64         `json:"total_amount"`
	AverageAmount int64         `json:"average_amount"`
	Bands         []SummaryBand `json:"bands"`
}

// Summarize counts and totals donations per amount bracket.
func (s *Service) Summarize(ctx context.Context, funeralID uuid.UUID, from, to *time.Time) (*Summary, error) {
	funeral, donations, err := s.list(ctx, funeralID, from, to)
	if err != nil {
		return nil, err
	}

	bands := []SummaryBand{
		{Label: "～5,000円"},
		{Label: "5,000～10,000円"},
		{Label: "10,000～30,000円"},
		{Label: "30,000円～"},
	}
	out := &Summary{FuneralID: funeralID, FamilyName: funeral.FamilyName}
	for _, d := range donations {
		out.Count++
		out.TotalAmount += d.Amount
		i := bandIndex(d.Amount)
		bands[i].Count++
		bands[i].Total += d.Amount
	}
	if out.Count > 0 {
		out.AverageAmount = int64(math.Round(float64(out.TotalAmount) / float64(out.Count)))
	}
	out.Bands = bands
	return out, nil
}

// bandIndex buckets an amount into half-open brackets: a donation of
// exactly 5,000 falls in the second band, not the first.
func bandIndex(amount int64) int {
	switch {
	case amount < 5000:
		return 0
	case amount < 10000:
		return 1
	case amount < 30000:
		return 2
	default:
		return 3
	}
}

// truncate shortens s to at most n runes, marking the cut with an
// ellipsis.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
