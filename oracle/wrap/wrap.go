// Package wrap 提供各测量后端共用的贪心折行算法。后端只需提供按样式测量
// 字符串宽度的函数，折行结果以 rune 偏移表示。
package wrap

import (
	"math"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/richtext"
)

// Measurer returns the advance width of s drawn in style st, in points.
type Measurer func(s string, st richtext.Style) float64

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenNewline
)

type token struct {
	kind       tokenKind
	start, end int
}

// Lines breaks text greedily into lines no wider than limit (<= 0 or
// unbounded for none). Trailing white space belongs to the line it ends
// but does not count towards the width. Explicit newlines always start a
// new line, so "a\n" has two lines. Bottoms are left zero; see fit.Stack.
func Lines(text richtext.Text, limit float64, mode fit.Wrap, measure Measurer) []fit.LineMetrics {
	if text.IsEmpty() {
		return nil
	}
	if limit <= 0 || fit.IsUnbounded(limit) {
		limit = math.MaxFloat64
	}
	b := newBreaker(text, limit, measure)

	if mode == fit.WrapNone {
		for _, tok := range b.tokenize(fit.WrapWord) {
			if tok.kind == tokenNewline {
				b.lineBreak(tok)
				continue
			}
			b.push(tok)
		}
		return b.finish()
	}

	for _, tok := range b.tokenize(mode) {
		switch tok.kind {
		case tokenNewline:
			b.lineBreak(tok)
		case tokenSpace:
			b.pending = append(b.pending, tok)
		default:
			b.place(tok)
		}
	}
	return b.finish()
}

type breaker struct {
	runes   []rune
	spans   []richtext.Span
	limit   float64
	measure Measurer

	lines     []fit.LineMetrics
	start     int // current line start
	end       int // end of the last word on the line
	lineWidth float64
	pending   []token // spaces seen after the last word
}

func newBreaker(text richtext.Text, limit float64, measure Measurer) *breaker {
	return &breaker{
		runes:   []rune(text.String()),
		spans:   text.Spans(),
		limit:   limit,
		measure: measure,
	}
}

// tokenize splits the text into words, space runs and newlines. In
// character mode every rune is a word of its own.
func (b *breaker) tokenize(mode fit.Wrap) []token {
	var tokens []token
	i := 0
	for i < len(b.runes) {
		r := b.runes[i]
		switch {
		case r == '\r' || r == '\n':
			j := i + 1
			if r == '\r' && j < len(b.runes) && b.runes[j] == '\n' {
				j++
			}
			tokens = append(tokens, token{kind: tokenNewline, start: i, end: j})
			i = j
		case richtext.IsBreakingSpace(r):
			j := i + 1
			for j < len(b.runes) && richtext.IsBreakingSpace(b.runes[j]) && b.runes[j] != '\n' && b.runes[j] != '\r' {
				j++
			}
			tokens = append(tokens, token{kind: tokenSpace, start: i, end: j})
			i = j
		case mode == fit.WrapCharacter:
			tokens = append(tokens, token{kind: tokenWord, start: i, end: i + 1})
			i++
		default:
			j := i + 1
			for j < len(b.runes) && !richtext.IsBreakingSpace(b.runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, start: i, end: j})
			i = j
		}
	}
	return tokens
}

// measureRange measures runes [from, to), run by run.
func (b *breaker) measureRange(from, to int) float64 {
	w := 0.0
	for _, sp := range b.spans {
		s, e := max(from, sp.Start), min(to, sp.End)
		if s >= e {
			continue
		}
		w += b.measure(string(b.runes[s:e]), sp.Style)
	}
	return w
}

func (b *breaker) pendingWidth() float64 {
	w := 0.0
	for _, tok := range b.pending {
		w += b.measureRange(tok.start, tok.end)
	}
	return w
}

// push appends tok to the current line without checking the limit.
func (b *breaker) push(tok token) {
	b.lineWidth += b.pendingWidth() + b.measureRange(tok.start, tok.end)
	b.pending = b.pending[:0]
	b.end = tok.end
}

// place appends a word, wrapping first when it does not fit and splitting
// it per rune when it is wider than a whole line.
func (b *breaker) place(tok token) {
	hasContent := b.end > b.start
	w := b.measureRange(tok.start, tok.end)
	if hasContent && b.lineWidth+b.pendingWidth()+w > b.limit {
		b.softBreak(tok.start)
	}
	if w <= b.limit {
		b.push(tok)
		return
	}
	from := tok.start
	for i := tok.start + 1; i <= tok.end; i++ {
		// 至少保留一个字符，避免无法前进
		if i-from > 1 && b.lineWidth+b.measureRange(from, i) > b.limit {
			b.push(token{kind: tokenWord, start: from, end: i - 1})
			b.softBreak(i - 1)
			from = i - 1
		}
	}
	b.push(token{kind: tokenWord, start: from, end: tok.end})
}

// softBreak ends the current line before rune next. Pending spaces stay on
// the old line.
func (b *breaker) softBreak(next int) {
	b.emit(next)
	b.start, b.end = next, next
}

// lineBreak ends the current line at an explicit newline.
func (b *breaker) lineBreak(tok token) {
	b.emit(tok.end)
	b.start, b.end = tok.end, tok.end
}

func (b *breaker) emit(end int) {
	b.lines = append(b.lines, fit.LineMetrics{Start: b.start, End: end, Width: b.lineWidth})
	b.lineWidth = 0
	b.pending = b.pending[:0]
}

func (b *breaker) finish() []fit.LineMetrics {
	// Spaces at the very end still occupy the last line.
	if len(b.pending) > 0 && b.end == b.start {
		b.lineWidth = b.pendingWidth()
	}
	b.emit(len(b.runes))
	return b.lines
}
