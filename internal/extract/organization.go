package extract

import (
	"regexp"
	"strings"

	"github.com/rfujimura/koden-tracker/constants"
)

var orgFaces = []constants.Face{constants.FaceFront, constants.FaceBack, constants.FaceInnerBack}

var orgPatterns = buildOrgPatterns()

func buildOrgPatterns() []*regexp.Regexp {
	prefixAlt := strings.Join(constants.CorporatePrefixes, "|")
	suffixAlt := strings.Join(constants.CorporateSuffixes, "|")
	bizAlt := strings.Join(constants.BusinessSuffixes, "|")
	return []*regexp.Regexp{
		// 株式会社山田商事
		regexp.MustCompile(`(?:` + prefixAlt + `)` + orgClass + `{1,20}`),
		// 山田物産株式会社
		regexp.MustCompile(orgClass + `{1,20}(?:` + suffixAlt + `)`),
		// 山田商店, 鈴木組, ○○町内会. The suffix must end the token:
		// single-character suffixes like 部 otherwise fire inside
		// personal names (阿部長三郎).
		regexp.MustCompile(`(` + orgClass + `{1,12}(?:` + bizAlt + `))(?:$|[^一-龠々〆ぁ-んァ-ヶー])`),
	}
}

// extractOrganization looks for a company or group name on the outer faces
// and the inner back. Ceremonial phrases and any detected title are blanked
// out first so 御香典 or 代表取締役 cannot be swallowed into the match.
func extractOrganization(ft NormalizedFaceText, title string) (string, constants.Face) {
	for _, f := range orgFaces {
		text, ok := ft[f]
		if !ok {
			continue
		}
		text = stripCeremonial(text)
		if title != "" {
			text = strings.ReplaceAll(text, title, " ")
		}
		for _, re := range orgPatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				if len(m) > 1 {
					return m[1], f
				}
				return m[0], f
			}
		}
	}
	return "", ""
}

func stripCeremonial(s string) string {
	for _, dt := range constants.DonationTypes {
		for _, v := range constants.PhraseVariants(dt.Type) {
			s = strings.ReplaceAll(s, v, " ")
		}
	}
	return s
}
