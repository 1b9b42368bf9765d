package canvasoracle

import (
	"math"
	"testing"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/richtext"
)

func newOracle() *Oracle { return New(fonts.NewRegistry(".")) }

func TestLayoutMetricsGreedyWrapsText(t *testing.T) {
	o := newOracle()
	m, err := o.LayoutMetrics(richtext.Plain("hello world again"), fit.Font{}, 12, 30, fit.WrapWord)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.LineCount() < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", m.LineCount())
	}
}

func TestLayoutMetricsHonorsNewlines(t *testing.T) {
	o := newOracle()
	m, err := o.LayoutMetrics(richtext.Plain("foo\n\nbar"), fit.Font{}, 12, 300, fit.WrapWord)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.LineCount() != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", m.LineCount())
	}
	if m.Lines[1].Width != 0 {
		t.Fatalf("expected middle line to be blank, got width %g", m.Lines[1].Width)
	}
}

// TestLineBottomsStack 验证：第 i 行底部 = (i+1)*(ascent+descent) + i*leading。
func TestLineBottomsStack(t *testing.T) {
	o := newOracle()
	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	m, err := o.LayoutMetrics(richtext.Plain(content), fit.Font{}, 12, 110, fit.WrapWord)
	if err != nil {
		t.Fatalf("LayoutMetrics error: %v", err)
	}
	if m.LineCount() < 2 {
		t.Fatalf("expected multiple lines, got %d", m.LineCount())
	}
	lh := m.LineHeight()
	if lh <= 0 || lh > 12*2 {
		t.Fatalf("implausible line height for 12pt: %g", lh)
	}
	const eps = 1e-6
	for i, ln := range m.Lines {
		want := float64(i+1)*lh + float64(i)*m.Leading
		if diff := math.Abs(ln.Bottom - want); diff > eps {
			t.Fatalf("line %d Bottom mismatch: got=%g want=%g", i, ln.Bottom, want)
		}
	}
}

// TestWrapWidthLimit 验证每行宽度不超过限制（pt）。
func TestWrapWidthLimit(t *testing.T) {
	o := newOracle()
	limit := 85.0
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	m, err := o.LayoutMetrics(richtext.Plain(content), fit.Font{}, 12, limit, fit.WrapWord)
	if err != nil {
		t.Fatalf("LayoutMetrics error: %v", err)
	}
	if m.LineCount() < 2 {
		t.Fatalf("expected the long word to be split, got %d lines", m.LineCount())
	}
	for i, ln := range m.Lines {
		if ln.Width-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	o := newOracle()
	first := "SAMPLE-A"
	measured, err := o.LayoutMetrics(richtext.Plain(first), fit.Font{}, 12, fit.Unbounded, fit.WrapWord)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	if measured.LineCount() != 1 {
		t.Fatalf("unexpected measured lines: %d", measured.LineCount())
	}
	limit := measured.Width()
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	m, err := o.LayoutMetrics(richtext.Plain(first+"\nSAMPLE-B"), fit.Font{}, 12, limit, fit.WrapWord)
	if err != nil {
		t.Fatalf("LayoutMetrics error: %v", err)
	}
	if got := m.LineCount(); got != 2 {
		t.Fatalf("expected 2 lines without blank, got %d", got)
	}
	if m.Lines[1].Start != len(first)+1 {
		t.Fatalf("second line should start after the newline, got %d", m.Lines[1].Start)
	}
}

func TestBoldRunIsWider(t *testing.T) {
	o := newOracle()
	plain, err := o.LayoutMetrics(richtext.Plain("Wide words"), fit.Font{}, 12, fit.Unbounded, fit.WrapWord)
	if err != nil {
		t.Fatalf("LayoutMetrics error: %v", err)
	}
	var txt richtext.Text
	txt.Append("Wide words", richtext.Style{Bold: true})
	bold, err := o.LayoutMetrics(txt, fit.Font{}, 12, fit.Unbounded, fit.WrapWord)
	if err != nil {
		t.Fatalf("LayoutMetrics error: %v", err)
	}
	if bold.Width() <= plain.Width() {
		t.Fatalf("bold width %g should exceed regular width %g", bold.Width(), plain.Width())
	}
}

func TestUnknownFontSourceFallsBack(t *testing.T) {
	reg := fonts.NewRegistry(t.TempDir())
	reg.Register("Missing", fonts.Regular, "missing.ttf")
	o := New(reg)
	m, err := o.LayoutMetrics(richtext.Plain("hello"), fit.Font{Family: "Missing"}, 12, fit.Unbounded, fit.WrapWord)
	if err != nil {
		t.Fatalf("expected fallback font, got error: %v", err)
	}
	if m.Width() <= 0 {
		t.Fatalf("fallback font should measure text, got width %g", m.Width())
	}
}

func TestEngineWithCanvasOracle(t *testing.T) {
	e, err := fit.New(fit.Options{Oracle: newOracle()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := fit.NewRequest(richtext.Plain("The quick brown fox jumps over the lazy dog"), fit.Font{Size: 24})
	req.Mode = fit.ModeWidth
	req.Lines = 1
	req.Width = 150
	res := e.Fit(req)
	if res.FontSize >= 24 || res.FontSize < fit.DefaultMinFontSize {
		t.Fatalf("expected a shrunk font size, got %g", res.FontSize)
	}
	if res.Lines != 1 || res.Size.Width > 150 {
		t.Fatalf("expected one line within 150pt, got lines=%d width=%g", res.Lines, res.Size.Width)
	}
}
