package gotextoracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/richtext"
)

func TestLayoutMetricsScalesWithSize(t *testing.T) {
	o := New(fonts.NewRegistry(""))
	small, err := o.LayoutMetrics(richtext.Plain("Hello"), fit.Font{}, 10, fit.Unbounded, fit.WrapWord)
	require.NoError(t, err)
	large, err := o.LayoutMetrics(richtext.Plain("Hello"), fit.Font{}, 20, fit.Unbounded, fit.WrapWord)
	require.NoError(t, err)

	require.Equal(t, 1, small.LineCount())
	assert.InEpsilon(t, 2*small.Width(), large.Width(), 0.05)
	assert.InEpsilon(t, 2*small.LineHeight(), large.LineHeight(), 0.05)
	assert.Greater(t, small.Ascent, small.Descent)
}

func TestLayoutMetricsWraps(t *testing.T) {
	o := New(fonts.NewRegistry(""))
	m, err := o.LayoutMetrics(richtext.Plain("one two three four five six"), fit.Font{Family: "serif"}, 12, 60, fit.WrapWord)
	require.NoError(t, err)
	assert.Greater(t, m.LineCount(), 1)
	for i, ln := range m.Lines {
		assert.LessOrEqual(t, ln.Width, 60.0, "line %d", i)
	}
	assert.InDelta(t, float64(m.LineCount())*m.LineHeight()+float64(m.LineCount()-1)*m.Leading, m.Height(), 1e-9)
}

func TestSuperscriptIsNarrower(t *testing.T) {
	o := New(fonts.NewRegistry(""))
	var sup richtext.Text
	sup.Append("2024", richtext.Style{Superscript: true})
	a, err := o.LayoutMetrics(richtext.Plain("2024"), fit.Font{}, 12, fit.Unbounded, fit.WrapNone)
	require.NoError(t, err)
	b, err := o.LayoutMetrics(sup, fit.Font{}, 12, fit.Unbounded, fit.WrapNone)
	require.NoError(t, err)
	assert.InEpsilon(t, a.Width()*scriptScale, b.Width(), 0.05)

	// 混排时上标部分同样按比例缩小
	var mixed richtext.Text
	mixed.Append("x", richtext.Style{})
	mixed.Append("2024", richtext.Style{Superscript: true})
	x, err := o.LayoutMetrics(richtext.Plain("x"), fit.Font{}, 12, fit.Unbounded, fit.WrapNone)
	require.NoError(t, err)
	c, err := o.LayoutMetrics(mixed, fit.Font{}, 12, fit.Unbounded, fit.WrapNone)
	require.NoError(t, err)
	assert.InEpsilon(t, x.Width()+b.Width(), c.Width(), 0.05)
}

func TestRejectsNonPositiveSize(t *testing.T) {
	o := New(fonts.NewRegistry(""))
	_, err := o.LayoutMetrics(richtext.Plain("x"), fit.Font{}, 0, 100, fit.WrapWord)
	assert.Error(t, err)
}
