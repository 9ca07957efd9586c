package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/rfujimura/koden-tracker/constants"
)

// Donation represents one condolence-money record for data transfer
// between layers. Amounts are stored in yen; zero means not recorded.
type Donation struct {
	ID               uuid.UUID `json:"id"`
	FuneralID        uuid.UUID `json:"funeral_id"`
	FullName         string    `json:"full_name"`
	LastName         *string   `json:"last_name,omitempty"`
	FirstName        *string   `json:"first_name,omitempty"`
	Relationship     *string   `json:"relationship,omitempty"`
	Address          string    `json:"address"`
	Amount           int64     `json:"amount"`
	EnclosedAmount   int64     `json:"enclosed_amount"`
	DonationType     string    `json:"donation_type"`
	DonationCategory string    `json:"donation_category"`
	CompanyName      string    `json:"company_name"`
	Position         string    `json:"position"`
	CoNames          []string  `json:"co_names,omitempty"`
	Notes            string    `json:"notes"`
	OCRResults       FaceTexts `json:"ocr_results,omitempty"`
	OCRProvider      string    `json:"ocr_provider,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FaceTexts holds the raw recognized text per photographed face, kept for
// audit alongside the structured fields.
type FaceTexts map[constants.Face]string

// DonorDisplayName prefers the split name when both parts are present.
func (d *Donation) DonorDisplayName() string {
	if d.LastName != nil && d.FirstName != nil && *d.LastName != "" && *d.FirstName != "" {
		return *d.LastName + " " + *d.FirstName
	}
	return d.FullName
}
