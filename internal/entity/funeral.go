package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/rfujimura/koden-tracker/constants"
)

// Funeral represents one funeral event, the grouping unit for donations.
type Funeral struct {
	ID           uuid.UUID             `json:"id"`
	FamilyName   string                `json:"family_name"`
	DeceasedName string                `json:"deceased_name"`
	Relationship *string               `json:"relationship,omitempty"`
	FuneralDate  time.Time             `json:"funeral_date"`
	Venue        *string               `json:"venue,omitempty"`
	Notes        string                `json:"notes"`
	Status       constants.EventStatus `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}
