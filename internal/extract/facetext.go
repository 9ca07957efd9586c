// Package extract turns raw recognized text from up to four photographed
// faces of a condolence-money envelope into a structured donation record.
// Every function in it is pure: same input, same output, no I/O, and no
// errors — an unparseable field degrades to its empty value.
package extract

import (
	"fmt"

	"github.com/rfujimura/koden-tracker/constants"
)

// FaceText maps a face identifier to the raw text recognized on that face.
// A face that was not photographed, or whose recognition failed, is simply
// absent (or mapped to the empty string — both are treated the same).
type FaceText map[constants.Face]string

// NormalizedFaceText is FaceText after normalization; empty faces are
// dropped so callers can range over present faces only.
type NormalizedFaceText map[constants.Face]string

// ExtractionResult is the structured record inferred from the face texts.
// Every field may be empty; none is authoritative — the caller presents
// them as an editable pre-fill.
type ExtractionResult struct {
	PersonalName     string `json:"personal_name"`
	OrganizationName string `json:"organization_name"`
	Title            string `json:"title"`
	Address          string `json:"address"`
	Amount           string `json:"amount"`          // digits only
	EnclosedAmount   string `json:"enclosed_amount"` // digits only, inner envelope
	Notes            string `json:"notes"`           // labeled face texts for audit
}

// Trace records which face each field was taken from, plus the raw face
// texts, for debugging pattern priority.
type Trace struct {
	Sources  map[string]constants.Face `json:"sources"`
	RawFaces FaceText                  `json:"raw_faces"`
}

// validate panics on an unknown face key. A bad key is a programming
// error in the caller, not a data problem, and must not be swallowed.
func (ft FaceText) validate() {
	for f := range ft {
		if !f.Valid() {
			panic(fmt.Sprintf("extract: unknown face identifier %q", string(f)))
		}
	}
}

// normalized returns the normalizer output for every non-empty face.
func (ft FaceText) normalized() NormalizedFaceText {
	out := make(NormalizedFaceText, len(ft))
	for f, raw := range ft {
		if s := Normalize(raw); s != "" {
			out[f] = s
		}
	}
	return out
}
