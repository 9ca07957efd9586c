package constants

import (
	"sort"
	"strings"
)

// phraseSynonyms maps recognizer misreads and informal spellings to the
// canonical envelope phrase. The hiragana ご prefix is the most common
// variant on handwritten envelopes.
var phraseSynonyms = map[string]string{
	"ご霊前":  "御霊前",
	"ご仏前":  "御仏前",
	"ご香典":  "御香典",
	"ご香料":  "御香料",
	"ご花料":  "御花料",
	"御佛前":  "御仏前",
	"玉串料":  "御玉串料",
	"お供物料": "御供物料",
}

// PhraseVariants lists every spelling that canonicalizes to the given
// phrase: the canonical form first, then its synonyms longest-first so
// substring variants (玉串料 inside 御玉串料) match and strip cleanly.
func PhraseVariants(canonical string) []string {
	out := []string{canonical}
	var syns []string
	for variant, c := range phraseSynonyms {
		if c == canonical {
			syns = append(syns, variant)
		}
	}
	sort.Slice(syns, func(i, j int) bool {
		if len(syns[i]) != len(syns[j]) {
			return len(syns[i]) > len(syns[j])
		}
		return syns[i] < syns[j]
	})
	return append(out, syns...)
}

// CanonicalizePhrase resolves a recognized ritual phrase to its canonical
// form. The second return reports whether the phrase is known at all.
func CanonicalizePhrase(input string) (string, bool) {
	normalized := strings.TrimSpace(input)
	if normalized == "" {
		return "", false
	}

	if canonical, ok := phraseSynonyms[normalized]; ok {
		return canonical, true
	}

	for _, dt := range DonationTypes {
		if normalized == dt.Type {
			return dt.Type, true
		}
	}

	return normalized, false
}
