package extract

import (
	"regexp"

	"github.com/rfujimura/koden-tracker/constants"
)

// Character classes shared by the field extractors. Full-width digits are
// kept in the classes because the normalizer does not fold width; the
// numeral interpreter does its own folding.
const (
	// every character the numeral interpreter understands
	numeralClass = `[0-9０-９〇零一二三四五六七八九十百千万億兆壱壹弌弐貳貮参參弎肆伍陸漆柒捌玖拾佰陌仟阡萬,，]`
	// characters that may appear in a Japanese personal name
	nameClass = `[一-龠々〆ぁ-んァ-ヶー]`
	// characters that may appear in an organization name
	orgClass = `[一-龠々〆ぁ-んァ-ヶーA-Za-z0-9Ａ-Ｚａ-ｚ０-９]`
	// characters that may appear in an address
	addrClass = `[一-龠々ぁ-んァ-ヶー0-9０-９]`
)

// firstMatch evaluates a (face, pattern) cascade: faces in the given order,
// patterns in the given order within each face, first submatch wins. It
// returns the first capture group (or the whole match when the pattern has
// no group) and the face it came from.
func firstMatch(ft NormalizedFaceText, faces []constants.Face, patterns []*regexp.Regexp) (string, constants.Face) {
	for _, f := range faces {
		text, ok := ft[f]
		if !ok {
			continue
		}
		for _, re := range patterns {
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

// longestMatch is firstMatch's sibling for patterns where several
// candidates may occur on one face and the longest one should win.
// Pattern order still takes precedence over length: the first pattern that
// matches at all decides, and only its own candidates compete on length.
func longestMatch(text string, patterns []*regexp.Regexp, pick func([]string) string) string {
	for _, re := range patterns {
		all := re.FindAllStringSubmatch(text, -1)
		if len(all) == 0 {
			continue
		}
		best := ""
		for _, m := range all {
			if c := pick(m); len(c) > len(best) {
				best = c
			}
		}
		if best != "" {
			return best
		}
	}
	return ""
}
