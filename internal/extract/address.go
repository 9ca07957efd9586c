package extract

import (
	"regexp"

	"github.com/rfujimura/koden-tracker/constants"
)

// The back of the outer envelope and the inner back are the conventional
// carriers of the sender's address, so they are consulted first.
var addressFaces = []constants.Face{
	constants.FaceBack,
	constants.FaceInnerBack,
	constants.FaceFront,
	constants.FaceInnerFront,
}

var addressPatterns = []*regexp.Regexp{
	// 東京都港区... style prefecture + municipality run
	regexp.MustCompile(`((?:北海道|東京都|京都府|大阪府|` + addrClass + `{2,3}県)` + addrClass + `+(?:市|区|町|村)` + addrClass + `*(?:[-ー]` + addrClass + `+)*)`),
	// 〒123-4567 followed by the address proper
	regexp.MustCompile(`〒[\s　]*[0-9０-９]{3}[-ー]?[0-9０-９]{4}[\s　]*(` + addrClass + `+(?:[-ー]` + addrClass + `+)*)`),
	// explicit label
	regexp.MustCompile(`住所[\s　:：]*(` + addrClass + `+(?:[-ー]` + addrClass + `+)*)`),
}

func extractAddress(ft NormalizedFaceText) (string, constants.Face) {
	return firstMatch(ft, addressFaces, addressPatterns)
}
