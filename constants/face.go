package constants

import "strings"

// Face identifies one photographed surface of a condolence-money envelope.
type Face string

// Stable values (store these exact strings in DB and JSON).
const (
	FaceFront      Face = "front"      // outer envelope, front (phrase + donor name)
	FaceBack       Face = "back"       // outer envelope, back (address, contact)
	FaceInnerFront Face = "innerFront" // inner envelope, front (amount)
	FaceInnerBack  Face = "innerBack"  // inner envelope, back (name, address)
)

// FaceOrder is the canonical visiting order for cross-face scans.
var FaceOrder = []Face{FaceFront, FaceBack, FaceInnerFront, FaceInnerBack}

// faceLabels are the human-facing Japanese labels used in audit notes
// and reports.
var faceLabels = map[Face]string{
	FaceFront:      "香典袋 表面",
	FaceBack:       "香典袋 裏面",
	FaceInnerFront: "中袋 表面",
	FaceInnerBack:  "中袋 裏面",
}

// Label returns the Japanese display label for a face.
func (f Face) Label() string {
	return faceLabels[f]
}

// Valid reports whether f is one of the four known faces.
func (f Face) Valid() bool {
	_, ok := faceLabels[f]
	return ok
}

// ParseFace canonicalizes a face identifier from external input.
func ParseFace(s string) (Face, bool) {
	f := Face(strings.TrimSpace(s))
	if f.Valid() {
		return f, true
	}
	// tolerate snake_case from older clients
	switch strings.ToLower(string(f)) {
	case "inner_front", "innerfront":
		return FaceInnerFront, true
	case "inner_back", "innerback":
		return FaceInnerBack, true
	}
	return "", false
}
