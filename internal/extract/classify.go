package extract

import (
	"sort"
	"strings"

	"github.com/rfujimura/koden-tracker/constants"
)

// PositionedFragment is a single recognized text fragment together with the
// vertical coordinate of its bounding box, as reported by the recognition
// service.
type PositionedFragment struct {
	Text string `json:"text"`
	Y    int    `json:"y"`
}

// DonationTypeResult is the classifier's verdict. Confidence is 0.9 for a
// whole-text hit, 0.85 for a hit confined to the top section of the
// envelope, and 0 when nothing matched.
type DonationTypeResult struct {
	Type       string  `json:"type"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Position   string  `json:"position,omitempty"`
}

// ClassifyDonationType matches the ritual phrase written on the envelope
// front against the fixed vocabulary. When the whole text carries no match
// but positioned fragments are available, only the upper 30% of fragments
// (at least five) is retried: the ceremonial phrase is brush-written at the
// top of the envelope, and matches lower down are usually misreads.
func ClassifyDonationType(frontText string, fragments []PositionedFragment) DonationTypeResult {
	for _, dt := range constants.DonationTypes {
		if containsPhrase(frontText, dt.Type) {
			return DonationTypeResult{Type: dt.Type, Category: dt.Category, Confidence: 0.9}
		}
	}
	if len(fragments) > 0 {
		sorted := make([]PositionedFragment, len(fragments))
		copy(sorted, fragments)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })
		n := len(sorted) * 30 / 100
		if n < 5 {
			n = 5
		}
		if n > len(sorted) {
			n = len(sorted)
		}
		for _, frag := range sorted[:n] {
			for _, dt := range constants.DonationTypes {
				if containsPhrase(frag.Text, dt.Type) {
					return DonationTypeResult{
						Type:       dt.Type,
						Category:   dt.Category,
						Confidence: 0.85,
						Position:   "top_section",
					}
				}
			}
		}
	}
	return DonationTypeResult{}
}

// containsPhrase matches the canonical phrase or any of its spellings
// (the hiragana ご variants above all).
func containsPhrase(text, canonical string) bool {
	for _, v := range constants.PhraseVariants(canonical) {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}
