package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDonationTypeWholeText(t *testing.T) {
	tests := []struct {
		text     string
		wantType string
		wantCat  string
	}{
		{"御霊前\n山田太郎", "御霊前", "仏式・神式・キリスト教式"},
		{"御仏前\n金一万円", "御仏前", "仏式（四十九日後）"},
		{"御香典", "御香典", "仏式"},
		{"御玉串料\n佐藤次郎", "御玉串料", "神式"},
		{"御花料", "御花料", "キリスト教式"},
		{"御供物料", "御供物料", "神式"},
	}
	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			got := ClassifyDonationType(tt.text, nil)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, 0.9, got.Confidence)
			assert.Empty(t, got.Position)
		})
	}
}

func TestClassifyDonationTypeHiraganaVariant(t *testing.T) {
	// handwritten envelopes often carry the hiragana ご prefix; the
	// classification still reports the canonical form
	tests := []struct {
		text     string
		wantType string
	}{
		{"ご霊前\n山田太郎", "御霊前"},
		{"ご仏前", "御仏前"},
		{"ご香典\n金一万円", "御香典"},
		{"玉串料", "御玉串料"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ClassifyDonationType(tt.text, nil)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, 0.9, got.Confidence)
		})
	}

	frags := []PositionedFragment{
		{Text: "ご霊前", Y: 10},
		{Text: "山田太郎", Y: 400},
	}
	got := ClassifyDonationType("", frags)
	assert.Equal(t, "御霊前", got.Type)
	assert.Equal(t, 0.85, got.Confidence)
}

func TestClassifyDonationTypeNoMatch(t *testing.T) {
	got := ClassifyDonationType("山田太郎\n金一万円", nil)
	assert.Equal(t, DonationTypeResult{}, got)
}

func TestClassifyDonationTypeTopFragments(t *testing.T) {
	// whole text has no phrase; the phrase arrives only as a fragment
	// near the top of the envelope
	frags := []PositionedFragment{
		{Text: "山田太郎", Y: 400},
		{Text: "御霊前", Y: 10},
		{Text: "金一万円", Y: 300},
	}
	got := ClassifyDonationType("", frags)
	assert.Equal(t, "御霊前", got.Type)
	assert.Equal(t, 0.85, got.Confidence)
	assert.Equal(t, "top_section", got.Position)
}

func TestClassifyDonationTypeFragmentOutsideTopSection(t *testing.T) {
	// 20 fragments: top 30% is 6; the phrase sits at position 10 and
	// must not be reached
	var frags []PositionedFragment
	for i := 0; i < 20; i++ {
		frags = append(frags, PositionedFragment{Text: fmt.Sprintf("断片%d", i), Y: i * 50})
	}
	frags[10].Text = "御霊前"
	got := ClassifyDonationType("", frags)
	assert.Equal(t, DonationTypeResult{}, got)
}

func TestClassifyDonationTypeMinimumFiveFragments(t *testing.T) {
	// with only 4 fragments the 30% cut would be 1, but at least 5 are
	// always consulted, so all 4 are
	frags := []PositionedFragment{
		{Text: "山田", Y: 100},
		{Text: "太郎", Y: 200},
		{Text: "金一万円", Y: 300},
		{Text: "御仏前", Y: 350},
	}
	got := ClassifyDonationType("", frags)
	assert.Equal(t, "御仏前", got.Type)
	assert.Equal(t, 0.85, got.Confidence)
}

func TestClassifyDonationTypeSpecificPhraseWins(t *testing.T) {
	// 御供物料 must not be reported as its substring-sharing sibling 御供
	got := ClassifyDonationType("御供物料 山田太郎", nil)
	assert.Equal(t, "御供物料", got.Type)
}
