package extract

import (
	"fmt"
	"strings"

	"github.com/rfujimura/koden-tracker/constants"
)

// Extract runs the full field-extraction pipeline over the recognized text
// of up to four envelope faces and assembles the structured record. It is a
// pure function: same input, same output, no I/O. Fields that cannot be
// recovered from the text are left empty, never reported as errors.
func Extract(ft FaceText) ExtractionResult {
	res, _ := ExtractDetailed(ft)
	return res
}

// ExtractDetailed is Extract plus a trace recording which face each field
// was taken from, for review screens that highlight the source photo.
func ExtractDetailed(ft FaceText) (ExtractionResult, Trace) {
	ft.validate()
	norm := ft.normalized()

	trace := Trace{
		Sources:  make(map[string]constants.Face),
		RawFaces: ft,
	}

	var res ExtractionResult

	res.Amount = extractAmount(norm)
	res.EnclosedAmount = extractEnclosedAmount(norm)
	if res.Amount == "" && res.EnclosedAmount != "" {
		// the inner envelope's figure is authoritative when the
		// outer envelope carries no amount of its own
		res.Amount = res.EnclosedAmount
	}

	var face constants.Face
	if res.Title, face = extractTitle(norm); face != "" {
		trace.Sources["title"] = face
	}
	var orgFace constants.Face
	if res.OrganizationName, orgFace = extractOrganization(norm, res.Title); orgFace != "" {
		trace.Sources["organization_name"] = orgFace
	}
	if res.Address, face = extractAddress(norm); face != "" {
		trace.Sources["address"] = face
	}
	if res.PersonalName, face = extractPersonalName(norm, orgFace, res.Address); face != "" {
		trace.Sources["personal_name"] = face
	}

	res.Notes = buildNotes(norm)
	return res, trace
}

// buildNotes concatenates every non-empty face's normalized text under a
// label naming that face, preserving the capture order.
func buildNotes(ft NormalizedFaceText) string {
	var parts []string
	for _, f := range constants.FaceOrder {
		if text, ok := ft[f]; ok {
			parts = append(parts, fmt.Sprintf("【%s】\n%s", f.Label(), text))
		}
	}
	return strings.Join(parts, "\n\n")
}
