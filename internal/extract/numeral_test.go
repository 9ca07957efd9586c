package extract

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// kanjiNumeral renders n in plain positional kanji, the way it would be
// brush-written on an envelope.
func kanjiNumeral(n int) string {
	if n == 0 {
		return "〇"
	}
	digits := []string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
	small := func(m int) string {
		s := ""
		if d := m / 1000; d > 0 {
			if d > 1 {
				s += digits[d]
			}
			s += "千"
		}
		if d := m / 100 % 10; d > 0 {
			if d > 1 {
				s += digits[d]
			}
			s += "百"
		}
		if d := m / 10 % 10; d > 0 {
			if d > 1 {
				s += digits[d]
			}
			s += "十"
		}
		if d := m % 10; d > 0 {
			s += digits[d]
		}
		return s
	}
	s := ""
	if m := n / 10000; m > 0 {
		if m > 1 {
			s += small(m)
		} else {
			s += "一"
		}
		s += "万"
	}
	s += small(n % 10000)
	return s
}

func TestInterpretNumeralRoundTrip(t *testing.T) {
	for n := 0; n < 100000; n++ {
		got := InterpretNumeral(kanjiNumeral(n))
		if got != strconv.Itoa(n) {
			t.Fatalf("InterpretNumeral(%s) = %q, want %d", kanjiNumeral(n), got, n)
		}
	}
}

func TestInterpretNumeral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"10000", "10000"},
		{"１０，０００", "10000"},
		{"10,000", "10000"},
		{"一万", "10000"},
		{"壱万", "10000"},
		{"壱萬", "10000"},
		{"弐千", "2000"},
		{"参万五千", "35000"},
		{"伍仟", "5000"},
		{"拾", "10"},
		{"佰", "100"},
		{"十", "10"},
		{"五十", "50"},
		{"百五", "105"},
		{"三千五百", "3500"},
		{"一億", "100000000"},
		{"2万", "20000"},
		{"三千200", "3000200"},
		{"金咲", ""},
		{"円", ""},
		{"abc123def", "123"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretNumeral(tt.in))
		})
	}
}

func TestInterpretNumeralDaijiDigits(t *testing.T) {
	daiji := []string{"壱", "弐", "参", "肆", "伍", "陸", "漆", "捌", "玖", "拾"}
	for i, d := range daiji {
		assert.Equal(t, strconv.Itoa(i+1), InterpretNumeral(d), d)
	}
}
