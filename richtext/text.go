package richtext

import (
	"strings"
	"unicode/utf8"
)

// Style 描述一段文本的样式属性，零值即普通文本。
type Style struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Superscript   bool   `json:"superscript,omitempty"`
	Subscript     bool   `json:"subscript,omitempty"`
	Color         string `json:"color,omitempty"`
	Family        string `json:"family,omitempty"`
	Href          string `json:"href,omitempty"`
	ID            string `json:"id,omitempty"`
}

// Run 是一段样式统一的文本。
type Run struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Span 以 rune 偏移描述某个 Run 覆盖的区间 [Start, End)。
type Span struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Style Style `json:"style"`
}

// Text 是由若干 Run 组成的富文本；纯文本就是只有一个无样式 Run 的 Text。
type Text struct {
	Runs []Run `json:"runs"`
}

// Plain wraps s as unstyled text.
func Plain(s string) Text {
	var t Text
	t.Append(s, Style{})
	return t
}

// String returns the text without styling.
func (t Text) String() string {
	if len(t.Runs) == 1 {
		return t.Runs[0].Text
	}
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Len returns the length in runes.
func (t Text) Len() int {
	n := 0
	for _, r := range t.Runs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

func (t Text) IsEmpty() bool {
	for _, r := range t.Runs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// Spans returns the rune range of every run.
func (t Text) Spans() []Span {
	spans := make([]Span, 0, len(t.Runs))
	pos := 0
	for _, r := range t.Runs {
		n := utf8.RuneCountInString(r.Text)
		spans = append(spans, Span{Start: pos, End: pos + n, Style: r.Style})
		pos += n
	}
	return spans
}

// Append adds s with the given style, merging into the last run when the
// styles match. Empty strings are ignored so runs never end up empty.
func (t *Text) Append(s string, style Style) {
	if s == "" {
		return
	}
	if n := len(t.Runs); n > 0 && t.Runs[n-1].Style == style {
		t.Runs[n-1].Text += s
		return
	}
	t.Runs = append(t.Runs, Run{Text: s, Style: style})
}

// Concat returns t followed by o.
func (t Text) Concat(o Text) Text {
	out := t.Clone()
	for _, r := range o.Runs {
		out.Append(r.Text, r.Style)
	}
	return out
}

// Slice returns the runes in [start, end). Runs are cut, never merged with
// their neighbours, so span styles survive unchanged.
func (t Text) Slice(start, end int) Text {
	if start < 0 {
		start = 0
	}
	var out Text
	if end <= start {
		return out
	}
	pos := 0
	for _, r := range t.Runs {
		n := utf8.RuneCountInString(r.Text)
		runStart, runEnd := pos, pos+n
		pos = runEnd
		if runEnd <= start {
			continue
		}
		if runStart >= end {
			break
		}
		from := max(start-runStart, 0)
		to := min(end, runEnd) - runStart
		out.Append(runeSlice(r.Text, from, to), r.Style)
	}
	return out
}

// StyleAt returns the style of the run covering rune offset i. Offsets past
// the end resolve to the last run.
func (t Text) StyleAt(i int) Style {
	pos := 0
	for _, r := range t.Runs {
		pos += utf8.RuneCountInString(r.Text)
		if i < pos {
			return r.Style
		}
	}
	if n := len(t.Runs); n > 0 {
		return t.Runs[n-1].Style
	}
	return Style{}
}

// Map applies f to every rune, keeping the run structure.
func (t Text) Map(f func(rune) rune) Text {
	var out Text
	for _, r := range t.Runs {
		out.Runs = append(out.Runs, Run{Text: strings.Map(f, r.Text), Style: r.Style})
	}
	return out
}

// TrimRightSpace drops trailing white space, run by run.
func (t Text) TrimRightSpace() Text {
	out := t.Clone()
	for len(out.Runs) > 0 {
		last := &out.Runs[len(out.Runs)-1]
		last.Text = strings.TrimRightFunc(last.Text, IsBreakingSpace)
		if last.Text != "" {
			break
		}
		out.Runs = out.Runs[:len(out.Runs)-1]
	}
	return out
}

// Equal reports whether both texts carry the same runs.
func (t Text) Equal(o Text) bool {
	if len(t.Runs) != len(o.Runs) {
		return false
	}
	for i := range t.Runs {
		if t.Runs[i] != o.Runs[i] {
			return false
		}
	}
	return true
}

// Clone copies the run slice so later appends cannot alias t.
func (t Text) Clone() Text {
	if t.Runs == nil {
		return Text{}
	}
	return Text{Runs: append([]Run(nil), t.Runs...)}
}

func runeSlice(s string, from, to int) string {
	i, start, end := 0, len(s), len(s)
	for b := range s {
		if i == from {
			start = b
		}
		if i == to {
			end = b
			break
		}
		i++
	}
	return s[start:end]
}

// IsBreakingSpace reports white space that allows a line break. U+00A0 is
// excluded; character wrapping uses it to glue words.
func IsBreakingSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', '\u2028', '\u2029', '\u3000':
		return true
	}
	return false
}
