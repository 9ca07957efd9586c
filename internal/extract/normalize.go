package extract

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHSpace     = regexp.MustCompile(`[ \t\x{3000}]+`)
	reBlankLines = regexp.MustCompile(`\n{2,}`)
	// decorative brackets and quotes that Vision picks up from the
	// envelope printing; they carry no field information
	reBrackets = regexp.MustCompile(`[「」『』【】〔〕《》〈〉（）()［］\[\]"'“”‘’]`)
	// dash/hyphen variants seen in addresses. The katakana long-vowel
	// mark ー is deliberately excluded: it is part of names.
	reDashes = regexp.MustCompile(`[‐‑‒–—―−－]`)
)

// Normalize cleans one face's raw recognized text: CRLF to LF, decorative
// brackets stripped, dash variants unified to "-", horizontal whitespace
// runs (including the full-width space) collapsed to single ASCII spaces,
// blank lines collapsed, line edges trimmed. Idempotent; empty in, empty
// out.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBrackets.ReplaceAllString(s, "")
	s = reDashes.ReplaceAllString(s, "-")
	s = reHSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
