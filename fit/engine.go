package fit

import (
	"log/slog"
	"math"

	"github.com/ByLCY/labelfit/richtext"
)

// heightEpsilon absorbs float noise when comparing line bottoms to a box.
const heightEpsilon = 1e-6

// lineFitMargin keeps the algebraic line fit just under the exact solution
// so rounding in the oracle cannot push the last line out of the box.
const lineFitMargin = 0.1

// Engine computes fitted font sizes through an Oracle. It keeps no state
// between calls; memoization lives in Cache and Label.
type Engine struct {
	oracle Oracle
	opts   Options
	log    *slog.Logger
}

// New creates an engine. A missing oracle is a configuration error and is
// reported here rather than on every call.
func New(opts Options) (*Engine, error) {
	if opts.Oracle == nil {
		return nil, ErrNoOracle
	}
	opts = opts.withDefaults()
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	return &Engine{oracle: opts.Oracle, opts: opts, log: log}, nil
}

// Options returns the effective options, defaults applied.
func (e *Engine) Options() Options { return e.opts }

// Measure lays text out once at the font's size, wrapping at width
// (<= 0 or Unbounded for none), and returns the natural content size.
func (e *Engine) Measure(text richtext.Text, font Font, width float64) Size {
	if text.IsEmpty() {
		return Size{}
	}
	m := e.layout(text, font, e.requestedSize(font.Size), width, WrapWord)
	return Size{Width: math.Ceil(m.Width()), Height: math.Ceil(m.Height())}
}

// Fit chooses the font size for req and truncates what still overflows.
// It never fails: degenerate input yields a zero-sized result and an
// unreachable target yields the floor size with truncated text.
func (e *Engine) Fit(req Request) Result {
	requested := e.requestedSize(req.Font.Size)
	floor := e.floorSize(req.MinFontSize, requested)
	res := Result{FontSize: requested, FittedFontSize: -1, EllipsisAt: -1}
	if req.Text.IsEmpty() || req.Width <= 0 || req.Height <= 0 {
		return res
	}

	text := req.Text.Clone()
	wrap := req.LineBreak.Wrap()
	lines := max(req.Lines, 0)
	width, height := req.Width, req.Height

	size := requested
	switch {
	case lines == 0:
		if req.Mode != ModeNone && !IsUnbounded(height) {
			size = e.heightFit(text, req.Font, floor, requested, width, height, wrap)
		}
	case req.Mode == ModeLines:
		if !IsUnbounded(height) {
			size = e.linesFit(text, req.Font, requested, lines, height, wrap)
		}
	case req.Mode == ModeWidth:
		size = e.widthFit(text, req.Font, floor, requested, lines, width, wrap)
	}
	size = clamp(size, floor, requested)
	if size != requested {
		res.FittedFontSize = size
	}
	if req.SyncFontSize >= 0 {
		size = clamp(req.SyncFontSize, floor, requested)
	}
	res.FontSize = size

	final := e.layout(text, req.Font, size, width, wrap)
	target := lines
	if lines == 0 && req.Mode == ModeNone {
		for _, ln := range final.Lines {
			if ln.Bottom > height+heightEpsilon {
				break
			}
			target++
		}
		target = max(target, 1)
	}

	res.Text = text
	overflow := final.Height() > height+heightEpsilon || (target > 0 && final.LineCount() > target)
	if overflow {
		if lines == 1 {
			res.SingleLine, res.MaxLines = true, 1
			res.Ellipsize = req.LineBreak.Ellipsize()
			final, res.Text, res.EllipsisAt = e.ellipsizeLine(text, req.Font, size, width, res.Ellipsize)
			res.Truncated = res.EllipsisAt >= 0
		} else {
			final, res.Text, res.EllipsisAt = e.truncate(text, req.Font, size, width, height, target, wrap)
			res.Truncated = true
		}
	}

	n := final.LineCount()
	if target > 0 {
		n = min(target, n)
	}
	res.Lines = n
	res.LineBoxes = final.Lines[:n]
	w, h := 0.0, 0.0
	for _, ln := range res.LineBoxes {
		w = math.Max(w, ln.Width)
	}
	if n > 0 {
		h = res.LineBoxes[n-1].Bottom
	}
	if req.Mode == ModeLines && lines > 0 && IsUnbounded(height) {
		h = float64(lines)*final.LineHeight() + float64(lines-1)*final.Leading
	}
	res.Size = Size{Width: math.Ceil(w), Height: math.Ceil(h)}
	if req.Mode == ModeNone && lines > 0 {
		res.MaxLines = lines
	}
	if req.LineBreak == BreakNoWrap {
		res.SingleLine = true
	}

	e.log.Debug("适配完成",
		"mode", req.Mode, "lines", res.Lines, "requested", requested,
		"fontSize", res.FontSize, "truncated", res.Truncated)
	return res
}

// layout calls the oracle, degrading failures to an empty layout.
func (e *Engine) layout(text richtext.Text, font Font, size, width float64, wrap Wrap) Metrics {
	if text.IsEmpty() {
		return Metrics{}
	}
	if width <= 0 || IsUnbounded(width) {
		width = Unbounded
	}
	if wrap == WrapCharacter {
		text = glueSpaces(text)
	}
	m, err := e.oracle.LayoutMetrics(text, font, size, width, wrap)
	if err != nil {
		e.log.Warn("文本测量失败", "size", size, "width", width, "err", err)
		return Metrics{}
	}
	return m
}

// glueSpaces turns ASCII spaces into U+00A0 so the oracle treats them as
// ordinary characters. Rune offsets are unchanged, so line boxes still index
// the caller's text.
func glueSpaces(text richtext.Text) richtext.Text {
	return text.Map(func(r rune) rune {
		if r == ' ' {
			return '\u00a0'
		}
		return r
	})
}

func (e *Engine) requestedSize(size float64) float64 {
	if size <= 0 || math.IsNaN(size) {
		return e.opts.DefaultFontSize
	}
	return size
}

func (e *Engine) floorSize(minSize, requested float64) float64 {
	if minSize <= 0 || math.IsNaN(minSize) {
		minSize = e.opts.DefaultMinFontSize
	}
	return math.Min(minSize, requested)
}

func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
