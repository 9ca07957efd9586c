package constants

// EventStatus is the canonical status for rows in funerals.
type EventStatus string

// Stable values (store these exact strings in DB).
const (
	EventStatusPlanned   EventStatus = "PLANNED"   // created, not yet held
	EventStatusActive    EventStatus = "ACTIVE"    // reception open, donations arriving
	EventStatusCompleted EventStatus = "COMPLETED" // closed out
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPlanned, EventStatusActive, EventStatusCompleted:
		return true
	}
	return false
}
