package richtext

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Boundaries returns the ascending rune offsets at which the text can be cut
// without detaching combining marks from their base rune. 0 and Len() are
// always included, as is every run boundary.
func (t Text) Boundaries() []int {
	seen := map[int]bool{0: true}
	out := []int{0}
	add := func(off int) {
		if !seen[off] {
			seen[off] = true
			out = append(out, off)
		}
	}
	base := 0
	for _, r := range t.Runs {
		s := r.Text
		pos, runes := 0, 0
		for pos < len(s) {
			n := norm.NFC.NextBoundaryInString(s[pos:], true)
			if n <= 0 {
				n = len(s) - pos
			}
			runes += utf8.RuneCountInString(s[pos : pos+n])
			pos += n
			add(base + runes)
		}
		base += runes
	}
	sort.Ints(out)
	return out
}

// WordStarts returns the rune offsets where a word begins after white space,
// in ascending order. Offset 0 is not included.
func (t Text) WordStarts() []int {
	var out []int
	prevSpace := false
	i := 0
	for _, r := range t.Runs {
		for _, c := range r.Text {
			space := IsBreakingSpace(c)
			if prevSpace && !space {
				out = append(out, i)
			}
			prevSpace = space
			i++
		}
	}
	return out
}
