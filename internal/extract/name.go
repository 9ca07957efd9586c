package extract

import (
	"regexp"
	"strings"

	"github.com/rfujimura/koden-tracker/constants"
)

var nameFaces = []constants.Face{constants.FaceFront, constants.FaceBack, constants.FaceInnerBack}

var namePatterns = []*regexp.Regexp{
	// 氏名: 山田太郎 / 名前 山田太郎
	regexp.MustCompile(`(?:氏名|名前)[\s　:：]*(` + nameClass + `{2,})`),
	// 山田 太郎 (surname and given name on one line; the separator is
	// a plain space only, so tokens on different lines never join)
	regexp.MustCompile(`(` + nameClass + `{2,8} +` + nameClass + `{1,8})`),
	// 山田太郎
	regexp.MustCompile(`(` + nameClass + `{2,8})`),
}

// amount expressions are made of name-legal kanji (金壱万円也), so they are
// blanked out before name matching
var amountExprs = []*regexp.Regexp{
	regexp.MustCompile(`[金¥￥][\s　]*` + numeralClass + `+[\s　]*円?也?`),
	regexp.MustCompile(numeralClass + `+[\s　]*円也?`),
}

var reJoinSpace = regexp.MustCompile(`[\s　]+`)

// extractPersonalName finds the payer's name. A face where an organization
// name was already found is skipped entirely; on corporate envelopes the
// personal name, if present at all, sits on another face. Ceremonial
// phrases, amount expressions and any detected address are blanked out
// first, since every one of them reads as a plausible kanji name run.
func extractPersonalName(ft NormalizedFaceText, orgFace constants.Face, address string) (string, constants.Face) {
	for _, f := range nameFaces {
		if f == orgFace && orgFace != "" {
			continue
		}
		text, ok := ft[f]
		if !ok {
			continue
		}
		text = stripCeremonial(text)
		for _, re := range amountExprs {
			text = re.ReplaceAllString(text, " ")
		}
		if address != "" {
			text = strings.ReplaceAll(text, address, " ")
		}
		name := longestMatch(text, namePatterns, func(m []string) string {
			// a bare title (代表取締役 on its own line) reads as a
			// plausible kanji run but is never the payer's name
			if constants.IsTitle(m[1]) {
				return ""
			}
			return m[1]
		})
		if name != "" {
			return reJoinSpace.ReplaceAllString(name, " "), f
		}
	}
	return "", ""
}
