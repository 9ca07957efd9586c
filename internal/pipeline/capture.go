// Package pipeline coordinates recognition and field extraction: fan out
// the photographed faces to the recognition service, run the extraction
// pipeline over the settled texts, and persist the resulting donation.
package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
	"github.com/rfujimura/koden-tracker/internal/extract"
	"github.com/rfujimura/koden-tracker/internal/repository"
	"github.com/rfujimura/koden-tracker/internal/vision"
)

// CaptureRequest carries the photographed faces of one envelope. With
// DryRun set the draft donation is returned without being persisted.
type CaptureRequest struct {
	FuneralID uuid.UUID
	Images    map[constants.Face][]byte
	DryRun    bool
}

// CaptureResult is the persisted donation together with the raw extraction
// output the review screen pre-fills from.
type CaptureResult struct {
	Donation     *entity.Donation
	Extraction   extract.ExtractionResult
	DonationType extract.DonationTypeResult
	Trace        extract.Trace
}

type Capture struct {
	Logger     *slog.Logger
	Recognizer vision.Recognizer
	Funerals   repository.FuneralRepository
	Donations  repository.DonationRepository
}

func NewCapture(logger *slog.Logger, recognizer vision.Recognizer, funerals repository.FuneralRepository, donations repository.DonationRepository) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{
		Logger:     logger,
		Recognizer: recognizer,
		Funerals:   funerals,
		Donations:  donations,
	}
}

// Run recognizes every face concurrently, extracts the structured fields
// once all recognitions settle, and persists the donation. A face whose
// recognition fails is treated as absent, not as a capture failure; the
// capture only fails when no face yields any text at all.
func (c *Capture) Run(ctx context.Context, req *CaptureRequest) (*CaptureResult, error) {
	if _, err := c.Funerals.Get(ctx, req.FuneralID); err != nil {
		return nil, err
	}

	ctx = common.WithFuneralID(ctx, req.FuneralID.String())
	faceText, fragments := c.recognizeAll(ctx, req.Images)
	if !hasText(faceText) {
		return nil, common.NewAppError("RECOGNITION", "no text recognized on any face", common.ErrRecognition)
	}

	result, trace := extract.ExtractDetailed(faceText)
	dtype := extract.ClassifyDonationType(faceText[constants.FaceFront], fragments[constants.FaceFront])

	donation := buildDonation(req.FuneralID, result, dtype, faceText)
	saved := donation
	if !req.DryRun {
		var err error
		saved, err = c.Donations.Create(ctx, donation)
		if err != nil {
			return nil, err
		}
	}

	c.Logger.Info("capture complete",
		"funeral_id", req.FuneralID,
		"donation_id", saved.ID,
		"saved", !req.DryRun,
		"faces", len(faceText),
		"donation_type", dtype.Type,
		"amount", saved.Amount,
	)
	return &CaptureResult{
		Donation:     saved,
		Extraction:   result,
		DonationType: dtype,
		Trace:        trace,
	}, nil
}

// recognizeAll fans the face images out to the recognition service. The
// extraction must not start before every recognition has settled, so the
// group is waited on even though per-face errors never propagate.
func (c *Capture) recognizeAll(ctx context.Context, images map[constants.Face][]byte) (extract.FaceText, map[constants.Face][]extract.PositionedFragment) {
	var mu sync.Mutex
	faceText := extract.FaceText{}
	fragments := map[constants.Face][]extract.PositionedFragment{}

	g, gctx := errgroup.WithContext(ctx)
	for face, image := range images {
		if len(image) == 0 {
			continue
		}
		g.Go(func() error {
			rec, err := c.Recognizer.Recognize(gctx, image)
			if err != nil {
				c.Logger.Warn("face recognition failed",
					"funeral_id", common.FuneralIDFromContext(gctx),
					"face", face, "error", err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			faceText[face] = rec.Text
			fragments[face] = rec.Fragments
			return nil
		})
	}
	_ = g.Wait()
	return faceText, fragments
}

func hasText(faces extract.FaceText) bool {
	for _, text := range faces {
		if strings.TrimSpace(text) != "" {
			return true
		}
	}
	return false
}

func buildDonation(funeralID uuid.UUID, res extract.ExtractionResult, dtype extract.DonationTypeResult, faces extract.FaceText) *entity.Donation {
	d := &entity.Donation{
		FuneralID:        funeralID,
		FullName:         res.PersonalName,
		Address:          res.Address,
		Amount:           amountValue(res.Amount),
		EnclosedAmount:   amountValue(res.EnclosedAmount),
		DonationType:     dtype.Type,
		DonationCategory: dtype.Category,
		CompanyName:      res.OrganizationName,
		Position:         res.Title,
		Notes:            res.Notes,
		OCRResults:       entity.FaceTexts(faces),
		OCRProvider:      vision.Provider,
	}
	if last, first, ok := strings.Cut(res.PersonalName, " "); ok {
		d.LastName = &last
		d.FirstName = &first
	}
	return d
}

// amountValue parses the extractor's digit string; empty means zero.
func amountValue(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
