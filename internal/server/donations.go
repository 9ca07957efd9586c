package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
	"github.com/rfujimura/koden-tracker/internal/pipeline"
	"github.com/rfujimura/koden-tracker/internal/repository"
)

const maxImageBytes = 20 << 20

type donationRequest struct {
	FullName         string            `json:"full_name"`
	LastName         *string           `json:"last_name"`
	FirstName        *string           `json:"first_name"`
	Relationship     *string           `json:"relationship"`
	Address          string            `json:"address"`
	Amount           int64             `json:"amount"`
	EnclosedAmount   int64             `json:"enclosed_amount"`
	DonationType     string            `json:"donation_type"`
	DonationCategory string            `json:"donation_category"`
	CompanyName      string            `json:"company_name"`
	Position         string            `json:"position"`
	CoNames          []string          `json:"co_names"`
	Notes            string            `json:"notes"`
	OCRResults       map[string]string `json:"ocr_results"`
	OCRProvider      string            `json:"ocr_provider"`
}

func (r *donationRequest) toEntity(funeralID uuid.UUID) (*entity.Donation, error) {
	if r.Amount < 0 || r.EnclosedAmount < 0 {
		return nil, common.InvalidArgumentErrorf("amounts must be non-negative")
	}
	v := common.NewValidator()
	v.Field("full_name", r.FullName, common.MaxLength(120))
	v.Field("company_name", r.CompanyName, common.MaxLength(120))
	v.Field("address", r.Address, common.MaxLength(300))
	v.Field("notes", r.Notes, common.MaxLength(2000))
	if err := v.Error(); err != nil {
		return nil, err
	}
	ocr := entity.FaceTexts{}
	for key, text := range r.OCRResults {
		face, ok := constants.ParseFace(key)
		if !ok {
			return nil, common.InvalidArgumentErrorf("unknown face %q in ocr_results", key)
		}
		ocr[face] = text
	}
	donationType := r.DonationType
	category := r.DonationCategory
	if canonical, known := constants.CanonicalizePhrase(donationType); known {
		donationType = canonical
		if category == "" {
			category, _ = constants.DonationCategory(canonical)
		}
	}
	return &entity.Donation{
		FuneralID:        funeralID,
		FullName:         r.FullName,
		LastName:         r.LastName,
		FirstName:        r.FirstName,
		Relationship:     r.Relationship,
		Address:          r.Address,
		Amount:           r.Amount,
		EnclosedAmount:   r.EnclosedAmount,
		DonationType:     donationType,
		DonationCategory: category,
		CompanyName:      r.CompanyName,
		Position:         r.Position,
		CoNames:          r.CoNames,
		Notes:            r.Notes,
		OCRResults:       ocr,
		OCRProvider:      r.OCRProvider,
	}, nil
}

func (s *Server) listDonations(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, err := s.funerals.Get(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	var filter *repository.ListDonationsFilter
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter = &repository.ListDonationsFilter{Query: q}
	}
	list, err := s.donations.ListByFuneral(c.Request.Context(), id, filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if list == nil {
		list = []*entity.Donation{}
	}
	c.JSON(http.StatusOK, gin.H{"donations": list})
}

func (s *Server) createDonation(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, err := s.funerals.Get(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	var req donationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.InvalidArgumentErrorf("invalid body: %v", err))
		return
	}
	d, err := req.toEntity(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	created, err := s.donations.Create(c.Request.Context(), d)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getDonation(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	d, err := s.donations.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) updateDonation(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	current, err := s.donations.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req donationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.InvalidArgumentErrorf("invalid body: %v", err))
		return
	}
	d, err := req.toEntity(current.FuneralID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	d.ID = id
	d.CreatedAt = current.CreatedAt
	updated, err := s.donations.Update(c.Request.Context(), d)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteDonation(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.donations.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// captureDonation accepts a multipart form with one image file per face
// (field names front, back, innerFront, innerBack), runs recognition and
// extraction, and stores the resulting donation. save=false returns the
// draft without persisting it, for review-before-save flows.
func (s *Server) captureDonation(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		s.respondError(c, common.InvalidArgumentErrorf("multipart form required: %v", err))
		return
	}

	images := map[constants.Face][]byte{}
	for field, files := range form.File {
		face, ok := constants.ParseFace(field)
		if !ok {
			s.respondError(c, common.InvalidArgumentErrorf("unknown face field %q", field))
			return
		}
		if len(files) == 0 {
			continue
		}
		fh := files[0]
		ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
		if _, allowed := constants.AllowedExtensions[ext]; !allowed {
			s.respondError(c, common.InvalidArgumentErrorf("unsupported file type %q for face %s", ext, face))
			return
		}
		if fh.Size > maxImageBytes {
			s.respondError(c, common.InvalidArgumentErrorf("image for face %s exceeds %d bytes", face, maxImageBytes))
			return
		}
		f, err := fh.Open()
		if err != nil {
			s.respondError(c, common.WrapError(err, "open upload"))
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
		f.Close()
		if err != nil {
			s.respondError(c, common.WrapError(err, "read upload"))
			return
		}
		images[face] = data
	}
	if len(images) == 0 {
		s.respondError(c, common.InvalidArgumentErrorf("at least one face image is required"))
		return
	}

	dryRun := c.DefaultQuery("save", "true") == "false"
	result, err := s.capture.Run(c.Request.Context(), &pipeline.CaptureRequest{
		FuneralID: id,
		Images:    images,
		DryRun:    dryRun,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"donation":      result.Donation,
		"extraction":    result.Extraction,
		"donation_type": result.DonationType,
		"sources":       result.Trace.Sources,
	})
}
