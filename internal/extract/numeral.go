package extract

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// daijiToCommon maps the formal "large numeral" (daiji) character set used
// on money envelopes and legal documents to the common kanji digits. The
// mapping is applied before any arithmetic so only one numeral system ever
// reaches the converter.
var daijiToCommon = map[rune]rune{
	'壱': '一', '壹': '一', '弌': '一',
	'弐': '二', '貳': '二', '貮': '二',
	'参': '三', '參': '三', '弎': '三',
	'肆': '四',
	'伍': '五',
	'陸': '六',
	'漆': '七', '柒': '七',
	'捌': '八',
	'玖': '九',
	'拾': '十',
	'佰': '百', '陌': '百',
	'仟': '千', '阡': '千',
	'萬': '万',
}

var kanjiDigits = map[rune]int64{
	'〇': 0, '零': 0,
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
}

// smallUnits scale the pending digit below the 万 boundary.
var smallUnits = map[rune]int64{'十': 10, '百': 100, '千': 1000}

// bigUnits fold the accumulated value into the running total.
var bigUnits = map[rune]int64{'万': 10_000, '億': 100_000_000, '兆': 1_000_000_000_000}

// InterpretNumeral converts a numeral written in any mixture of Arabic
// digits (full- or half-width), common kanji digits, positional kanji and
// daiji forms into a plain ASCII digit string. Unconvertible input yields
// "" — never an error, never a negative value.
func InterpretNumeral(s string) string {
	if s == "" {
		return ""
	}
	// fold full-width digits to ASCII, map daiji to common kanji and
	// drop grouping commas in one pass
	var b strings.Builder
	for _, r := range width.Fold.String(s) {
		if r == ',' || r == ' ' {
			continue
		}
		if c, ok := daijiToCommon[r]; ok {
			r = c
		}
		b.WriteRune(r)
	}
	runes := []rune(b.String())
	if len(runes) == 0 {
		return ""
	}

	// positional prefix with a trailing run of plain digits, e.g. 三千200
	// from inconsistent recognition. The halves are kept as written and
	// joined as strings rather than merged arithmetically.
	if prefix, suffix, ok := splitMixed(runes); ok {
		return strconv.FormatInt(accumulate(prefix), 10) + string(suffix)
	}

	if allNumeric(runes) {
		return strconv.FormatInt(accumulate(runes), 10)
	}

	// last resort: keep whatever plain digits survive
	var digits strings.Builder
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

func isNumeric(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	if _, ok := kanjiDigits[r]; ok {
		return true
	}
	if _, ok := smallUnits[r]; ok {
		return true
	}
	_, ok := bigUnits[r]
	return ok
}

func allNumeric(runes []rune) bool {
	for _, r := range runes {
		if !isNumeric(r) {
			return false
		}
	}
	return true
}

// accumulate runs the positional conversion. cur collects consecutive
// digits, tmp the value below the current 万/億/兆 boundary, man the value
// above it. A positional character with no pending digit means one (十 is
// 10, not 0).
func accumulate(runes []rune) int64 {
	var man, tmp, cur int64
	for _, r := range runes {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + int64(r-'0')
		default:
			if d, ok := kanjiDigits[r]; ok {
				cur = cur*10 + d
				continue
			}
			if u, ok := smallUnits[r]; ok {
				if cur == 0 {
					cur = 1
				}
				tmp += cur * u
				cur = 0
				continue
			}
			if u, ok := bigUnits[r]; ok {
				tmp += cur
				cur = 0
				if tmp == 0 {
					tmp = 1
				}
				man += tmp * u
				tmp = 0
			}
		}
	}
	return man + tmp + cur
}

// splitMixed detects a kanji-numeral prefix followed by nothing but ASCII
// digits. Both halves must be non-empty and the prefix must contain at
// least one kanji character for the split to apply.
func splitMixed(runes []rune) (prefix, suffix []rune, ok bool) {
	i := 0
	kanji := false
	for i < len(runes) && isNumeric(runes[i]) && !(runes[i] >= '0' && runes[i] <= '9') {
		kanji = true
		i++
	}
	if !kanji || i == len(runes) {
		return nil, nil, false
	}
	for j := i; j < len(runes); j++ {
		if runes[j] < '0' || runes[j] > '9' {
			return nil, nil, false
		}
	}
	return runes[:i], runes[i:], true
}
