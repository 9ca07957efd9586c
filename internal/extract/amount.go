package extract

import (
	"regexp"
	"strings"

	"github.com/rfujimura/koden-tracker/constants"
)

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`金[\s　]*(` + numeralClass + `+)[\s　]*円`),
	regexp.MustCompile(`(` + numeralClass + `+)[\s　]*円`),
	regexp.MustCompile(`金額[\s　:：]*(` + numeralClass + `+)`),
	regexp.MustCompile(`[¥￥][\s　]*(` + numeralClass + `+)`),
	regexp.MustCompile(`金[\s　]*(` + numeralClass + `+)`),
}

// extractAmount scans all faces joined into one blob, outer faces first.
// The envelope total is commonly written on the outer front ("金壱万円也")
// but sloppy envelopes carry it anywhere, so no face is excluded.
func extractAmount(ft NormalizedFaceText) string {
	var parts []string
	for _, f := range constants.FaceOrder {
		if text, ok := ft[f]; ok {
			parts = append(parts, text)
		}
	}
	blob := strings.Join(parts, "\n")
	for _, re := range amountPatterns {
		if m := re.FindStringSubmatch(blob); m != nil {
			if v := InterpretNumeral(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// extractEnclosedAmount reads only the inner envelope's front, the face
// where the enclosed sum is customarily declared.
func extractEnclosedAmount(ft NormalizedFaceText) string {
	text, ok := ft[constants.FaceInnerFront]
	if !ok {
		return ""
	}
	for _, re := range amountPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := InterpretNumeral(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}
