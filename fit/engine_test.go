package fit_test

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/oracle/wrap"
	"github.com/ByLCY/labelfit/richtext"
)

// fixedOracle advances every rune by half the font size. A line is one size
// tall (ascent 0.8, descent 0.2) and lines are 0.2 size apart.
var fixedOracle = fit.OracleFunc(func(text richtext.Text, font fit.Font, size, width float64, mode fit.Wrap) (fit.Metrics, error) {
	lines := wrap.Lines(text, width, mode, func(s string, _ richtext.Style) float64 {
		return float64(utf8.RuneCountInString(s)) * size / 2
	})
	return fit.Stack(lines, 0.8*size, 0.2*size, 0.2*size), nil
})

func newEngine(t *testing.T, o fit.Oracle) *fit.Engine {
	t.Helper()
	e, err := fit.New(fit.Options{Oracle: o})
	require.NoError(t, err)
	return e
}

func request(text string, size, minSize float64, mode fit.Mode, lines int, width, height float64) fit.Request {
	req := fit.NewRequest(richtext.Plain(text), fit.Font{Size: size})
	req.MinFontSize = minSize
	req.Mode = mode
	req.Lines = lines
	req.Width = width
	req.Height = height
	return req
}

func TestNewRequiresOracle(t *testing.T) {
	_, err := fit.New(fit.Options{})
	assert.ErrorIs(t, err, fit.ErrNoOracle)
}

func TestFitSingleLineFits(t *testing.T) {
	e := newEngine(t, fixedOracle)
	res := e.Fit(request("Hello", 20, 4, fit.ModeLines, 1, 200, 50))
	assert.Equal(t, 20.0, res.FontSize)
	assert.Equal(t, -1.0, res.FittedFontSize)
	assert.Equal(t, 1, res.Lines)
	assert.False(t, res.Truncated)
	assert.Equal(t, fit.Size{Width: 50, Height: 20}, res.Size)
}

func TestFitWidthShrinksToLineCount(t *testing.T) {
	e := newEngine(t, fixedOracle)
	res := e.Fit(request("abcd abcd abcd abcd", 40, 10, fit.ModeWidth, 2, 100, fit.Unbounded))
	// 两个单词占 9 个字宽，字宽 <= 100/9 时恰好两行
	assert.InDelta(t, 200.0/9, res.FontSize, 0.1)
	assert.LessOrEqual(t, res.FontSize, 200.0/9)
	assert.Equal(t, 2, res.Lines)
	assert.False(t, res.Truncated)
	assert.Equal(t, res.FontSize, res.FittedFontSize)
}

func TestFitWidthTruncatesAtFloor(t *testing.T) {
	e := newEngine(t, fixedOracle)
	text := strings.TrimSpace(strings.Repeat("abcd ", 20))
	res := e.Fit(request(text, 40, 10, fit.ModeWidth, 2, 100, fit.Unbounded))
	assert.Equal(t, 10.0, res.FontSize)
	assert.Equal(t, 2, res.Lines)
	assert.True(t, res.Truncated)
	assert.True(t, strings.HasSuffix(res.Text.String(), fit.DefaultEllipsis))
	assert.Equal(t, res.Text.Len()-1, res.EllipsisAt)
}

func TestFitNoneCountsLinesThatFit(t *testing.T) {
	e := newEngine(t, fixedOracle)
	// 行底依次为 20、44、68、92
	text := strings.TrimSpace(strings.Repeat("abcd ", 10))
	res := e.Fit(request(text, 20, 4, fit.ModeNone, 0, 100, 68))
	assert.Equal(t, 20.0, res.FontSize)
	assert.Equal(t, 3, res.Lines)
	assert.True(t, res.Truncated)
	assert.Equal(t, 68.0, res.Size.Height)

	longer := e.Fit(request(strings.Repeat(text+" ", 5), 20, 4, fit.ModeNone, 0, 100, 68))
	assert.Equal(t, 3, longer.Lines)
	assert.Equal(t, 20.0, longer.FontSize)
}

func TestFitEmptyText(t *testing.T) {
	o := &fit.CountingOracle{Oracle: fixedOracle}
	e := newEngine(t, o)
	res := e.Fit(request("", 20, 4, fit.ModeWidth, 2, 100, 100))
	assert.Equal(t, 20.0, res.FontSize)
	assert.Equal(t, 0, res.Lines)
	assert.Equal(t, fit.Size{}, res.Size)
	assert.Zero(t, o.Calls)
}

func TestFitDegenerateBox(t *testing.T) {
	e := newEngine(t, fixedOracle)
	res := e.Fit(request("Hello", 20, 4, fit.ModeWidth, 1, 0, 100))
	assert.Equal(t, 20.0, res.FontSize)
	assert.Equal(t, fit.Size{}, res.Size)
}

func TestFitLinesAlgebraic(t *testing.T) {
	e := newEngine(t, fixedOracle)
	res := e.Fit(request("abcd abcd", 40, 4, fit.ModeLines, 2, fit.Unbounded, 50))
	assert.InDelta(t, 50/2.2-0.1, res.FontSize, 1e-9)

	unbounded := e.Fit(request("abcd\nabcd", 20, 4, fit.ModeLines, 2, fit.Unbounded, fit.Unbounded))
	assert.Equal(t, 20.0, unbounded.FontSize)
	assert.Equal(t, 44.0, unbounded.Size.Height)
}

func TestFitZeroLinesSearchesHeight(t *testing.T) {
	e := newEngine(t, fixedOracle)
	text := strings.TrimSpace(strings.Repeat("abcd ", 10))
	res := e.Fit(request(text, 40, 4, fit.ModeLines, 0, 100, 100))
	assert.Less(t, res.FontSize, 40.0)
	assert.False(t, res.Truncated)
	assert.LessOrEqual(t, res.Size.Height, 100.0)
}

func TestFitBounds(t *testing.T) {
	e := newEngine(t, fixedOracle)
	text := "The quick brown fox jumps over the lazy dog"
	for _, mode := range []fit.Mode{fit.ModeNone, fit.ModeWidth, fit.ModeLines} {
		for lines := 0; lines <= 3; lines++ {
			for w := 20.0; w <= 400; w += 45 {
				for h := 10.0; h <= 200; h += 38 {
					res := e.Fit(request(text, 30, 8, mode, lines, w, h))
					assert.GreaterOrEqual(t, res.FontSize, 8.0, "mode=%s lines=%d w=%v h=%v", mode, lines, w, h)
					assert.LessOrEqual(t, res.FontSize, 30.0, "mode=%s lines=%d w=%v h=%v", mode, lines, w, h)
				}
			}
		}
	}
}

func TestFitDoesNotShrinkWhenItFits(t *testing.T) {
	e := newEngine(t, fixedOracle)
	for _, mode := range []fit.Mode{fit.ModeWidth, fit.ModeLines} {
		res := e.Fit(request("short", 20, 4, mode, 0, 400, 400))
		assert.Equal(t, 20.0, res.FontSize, "mode=%s", mode)
		res = e.Fit(request("short", 20, 4, fit.ModeWidth, 1, 400, 400))
		assert.Equal(t, 20.0, res.FontSize)
	}
}

func TestFitMonotonicInWidth(t *testing.T) {
	e := newEngine(t, fixedOracle)
	text := "The quick brown fox jumps over the lazy dog"
	prev := 0.0
	for w := 40.0; w <= 600; w += 10 {
		res := e.Fit(request(text, 40, 4, fit.ModeWidth, 2, w, fit.Unbounded))
		assert.GreaterOrEqual(t, res.FontSize, prev, "width=%v", w)
		prev = res.FontSize
	}
}

func TestFitMonotonicInHeight(t *testing.T) {
	e := newEngine(t, fixedOracle)
	text := "The quick brown fox jumps over the lazy dog"
	for _, mode := range []fit.Mode{fit.ModeWidth, fit.ModeLines} {
		prev := 0.0
		for h := 10.0; h <= 300; h += 7 {
			res := e.Fit(request(text, 40, 4, mode, 0, 150, h))
			assert.GreaterOrEqual(t, res.FontSize, prev, "mode=%s height=%v", mode, h)
			prev = res.FontSize
		}
	}
}

func TestTruncateKeepsRuns(t *testing.T) {
	e := newEngine(t, fixedOracle)
	var text richtext.Text
	text.Append("abcd abcd ", richtext.Style{Bold: true})
	text.Append("abcd abcd abcd", richtext.Style{})
	req := fit.NewRequest(text, fit.Font{Size: 20})
	req.Lines = 2
	req.Width = 100

	res := e.Fit(req)
	require.True(t, res.Truncated)
	assert.Equal(t, []richtext.Run{
		{Text: "abcd abcd ", Style: richtext.Style{Bold: true}},
		{Text: "abcd abcd…", Style: richtext.Style{}},
	}, res.Text.Runs)
	assert.Equal(t, 19, res.EllipsisAt)
	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, 2, res.MaxLines)
}

func TestSingleLineEllipsize(t *testing.T) {
	e := newEngine(t, fixedOracle)
	cases := []struct {
		lb   fit.LineBreak
		want string
		at   int
	}{
		{fit.BreakTailTruncation, "abcde…", 5},
		{fit.BreakWordWrap, "abcde…", 5},
		{fit.BreakHeadTruncation, "…fghij", 0},
		{fit.BreakMiddleTruncation, "abc…ij", 3},
	}
	for _, c := range cases {
		t.Run(c.lb.String(), func(t *testing.T) {
			req := request("abcdefghij", 20, 4, fit.ModeNone, 1, 60, fit.Unbounded)
			req.LineBreak = c.lb
			res := e.Fit(req)
			assert.True(t, res.SingleLine)
			assert.True(t, res.Truncated)
			assert.Equal(t, c.want, res.Text.String())
			assert.Equal(t, c.at, res.EllipsisAt)
			assert.Equal(t, 1, res.Lines)
			assert.Equal(t, 60.0, res.Size.Width)
		})
	}
}

func TestNoWrapClipsWithoutEllipsis(t *testing.T) {
	e := newEngine(t, fixedOracle)
	req := request("abcdefghij", 20, 4, fit.ModeNone, 1, 60, fit.Unbounded)
	req.LineBreak = fit.BreakNoWrap
	res := e.Fit(req)
	assert.True(t, res.SingleLine)
	assert.False(t, res.Truncated)
	assert.Equal(t, -1, res.EllipsisAt)
	assert.Equal(t, "abcdefghij", res.Text.String())
}

func TestCharacterWrapGluesSpaces(t *testing.T) {
	e := newEngine(t, fixedOracle)
	req := request("ab cd", 20, 4, fit.ModeNone, 0, 25, fit.Unbounded)
	req.LineBreak = fit.BreakCharacterWrap
	res := e.Fit(req)
	// 空格按普通字符折行，但返回的文本保留原样
	assert.Equal(t, "ab cd", res.Text.String())
	require.Equal(t, 3, res.Lines)
	assert.Equal(t, 2, res.LineBoxes[1].Start)

	req.LineBreak = fit.BreakWordWrap
	assert.Equal(t, 2, e.Fit(req).Lines)
}

func TestFitResultDoesNotAliasRequest(t *testing.T) {
	e := newEngine(t, fixedOracle)
	text := richtext.Plain("Hello")
	res := e.Fit(fit.NewRequest(text, fit.Font{Size: 20}))
	text.Runs[0].Text = "World"
	assert.Equal(t, "Hello", res.Text.String())
}

func TestSyncFontSizeOverrides(t *testing.T) {
	e := newEngine(t, fixedOracle)
	req := request("short", 20, 4, fit.ModeWidth, 1, 400, fit.Unbounded)
	req.SyncFontSize = 12
	res := e.Fit(req)
	assert.Equal(t, 12.0, res.FontSize)
	assert.Equal(t, -1.0, res.FittedFontSize)

	req.SyncFontSize = 2
	assert.Equal(t, 4.0, e.Fit(req).FontSize)
}

func TestDefaultSizes(t *testing.T) {
	e := newEngine(t, fixedOracle)
	req := request("short", 0, -1, fit.ModeNone, 0, 400, fit.Unbounded)
	assert.Equal(t, fit.DefaultFontSize, e.Fit(req).FontSize)

	// 下限为 0 或负数时都退回默认下限
	for _, minSize := range []float64{0, -1} {
		res := e.Fit(request("abcdefghij", 20, minSize, fit.ModeWidth, 1, 10, fit.Unbounded))
		assert.Equal(t, fit.DefaultMinFontSize, res.FontSize, "min size %g", minSize)
		assert.True(t, res.Truncated)
	}
}

func TestOracleFailureDegrades(t *testing.T) {
	failing := fit.OracleFunc(func(richtext.Text, fit.Font, float64, float64, fit.Wrap) (fit.Metrics, error) {
		return fit.Metrics{}, errors.New("boom")
	})
	e := newEngine(t, failing)
	res := e.Fit(request("Hello", 20, 4, fit.ModeWidth, 1, 100, 100))
	assert.Equal(t, 20.0, res.FontSize)
	assert.Equal(t, 0, res.Lines)
}

func TestMeasure(t *testing.T) {
	e := newEngine(t, fixedOracle)
	sz := e.Measure(richtext.Plain("Hello"), fit.Font{Size: 20}, fit.Unbounded)
	assert.Equal(t, fit.Size{Width: 50, Height: 20}, sz)
	sz = e.Measure(richtext.Plain("Hello Hello"), fit.Font{Size: 20}, 60)
	assert.Equal(t, fit.Size{Width: 50, Height: 44}, sz)
}
