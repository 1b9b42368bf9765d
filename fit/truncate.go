package fit

import (
	"sort"

	"github.com/ByLCY/labelfit/richtext"
)

// truncate keeps the longest prefix that, followed by the ellipsis, lays out
// within target lines (0 = any) and the height. Cuts only happen on cluster
// and run boundaries, so run styles stay intact. It returns the final
// layout, the text and the rune offset of the ellipsis.
func (e *Engine) truncate(text richtext.Text, font Font, size, width, height float64, target int, wrap Wrap) (Metrics, richtext.Text, int) {
	fits := func(m Metrics) bool {
		return m.Height() <= height+heightEpsilon && (target <= 0 || m.LineCount() <= target)
	}

	full := e.layout(text, font, size, width, wrap)
	keep := full.LineCount()
	if target > 0 {
		keep = min(keep, target)
	}
	for keep > 0 && full.Lines[keep-1].Bottom > height+heightEpsilon {
		keep--
	}
	limit := 0
	if keep > 0 {
		limit = full.Lines[keep-1].End
	}

	var cuts []int
	for _, b := range text.Boundaries() {
		if b > limit {
			break
		}
		cuts = append(cuts, b)
	}

	candidate := func(i int) (richtext.Text, int) {
		head := text.Slice(0, cuts[i]).TrimRightSpace()
		at := head.Len()
		return head.Concat(e.ellipsis(text.StyleAt(max(at-1, 0)))), at
	}
	// Prefixes fit up to some length and overflow beyond it.
	idx := sort.Search(len(cuts), func(i int) bool {
		t, _ := candidate(i)
		return !fits(e.layout(t, font, size, width, wrap))
	})
	best := max(idx-1, 0)
	t, at := candidate(best)
	return e.layout(t, font, size, width, wrap), t, at
}

// ellipsizeLine renders text as one line, replacing the start, middle or
// end with the ellipsis until it fits the width. EllipsizeNone clips: the
// text is returned unchanged with offset -1.
func (e *Engine) ellipsizeLine(text richtext.Text, font Font, size, width float64, where Ellipsize) (Metrics, richtext.Text, int) {
	flat := text.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	})
	m := e.layout(flat, font, size, Unbounded, WrapNone)
	if where == EllipsizeNone || m.Width() <= width {
		return m, flat, -1
	}

	cuts := flat.Boundaries()
	total := flat.Len()
	k := len(cuts) - 1
	candidate := func(kept int) (richtext.Text, int) {
		switch where {
		case EllipsizeStart:
			from := cuts[k-kept]
			return e.ellipsis(flat.StyleAt(from)).Concat(flat.Slice(from, total)), 0
		case EllipsizeMiddle:
			head := flat.Slice(0, cuts[(kept+1)/2]).TrimRightSpace()
			at := head.Len()
			tail := flat.Slice(cuts[k-kept/2], total)
			return head.Concat(e.ellipsis(flat.StyleAt(max(at-1, 0)))).Concat(tail), at
		default:
			head := flat.Slice(0, cuts[kept]).TrimRightSpace()
			at := head.Len()
			return head.Concat(e.ellipsis(flat.StyleAt(max(at-1, 0)))), at
		}
	}
	idx := sort.Search(k, func(kept int) bool {
		t, _ := candidate(kept)
		return e.layout(t, font, size, Unbounded, WrapNone).Width() > width
	})
	t, at := candidate(max(idx-1, 0))
	return e.layout(t, font, size, Unbounded, WrapNone), t, at
}

func (e *Engine) ellipsis(style richtext.Style) richtext.Text {
	var t richtext.Text
	t.Append(e.opts.Ellipsis, style)
	return t
}
