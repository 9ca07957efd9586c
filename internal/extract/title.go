package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rfujimura/koden-tracker/constants"
)

var titleFaces = []constants.Face{constants.FaceFront, constants.FaceBack, constants.FaceInnerBack}

// amount-only faces carry nothing but a sum ("金壱万円也"); a title match
// inside one would be a false positive from numeral kanji.
var reAmountOnly = regexp.MustCompile(`^[\s　]*[金¥￥]?[\s　]*` + numeralClass + `+[\s　]*円?[\s　]*也?[\s　]*$`)

var reNameRune = regexp.MustCompile(`^` + nameClass + `$`)

// extractTitle looks for a job or role title on the outer faces and the
// inner back. Titles are matched longest-first so 代表取締役社長 is not
// reported as 社長, and a hit must sit on its own word boundary: the rune
// on either side must not be a name character (部長 inside 阿部長三郎 is
// part of the name, not a title).
func extractTitle(ft NormalizedFaceText) (string, constants.Face) {
	for _, f := range titleFaces {
		text, ok := ft[f]
		if !ok {
			continue
		}
		if reAmountOnly.MatchString(text) {
			continue
		}
		for _, t := range constants.Titles {
			if idx := boundedIndex(text, t); idx >= 0 {
				return t, f
			}
		}
	}
	return "", ""
}

// boundedIndex reports the byte offset of needle in haystack where neither
// neighboring rune belongs to the name character class, or -1.
func boundedIndex(haystack, needle string) int {
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		idx += from
		before := true
		if idx > 0 {
			r, _ := utf8.DecodeLastRuneInString(haystack[:idx])
			before = !reNameRune.MatchString(string(r))
		}
		after := true
		if end := idx + len(needle); end < len(haystack) {
			r, _ := utf8.DecodeRuneInString(haystack[end:])
			after = !reNameRune.MatchString(string(r))
		}
		if before && after {
			return idx
		}
		from = idx + len(needle)
	}
}
