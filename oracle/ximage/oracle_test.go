package ximageoracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/richtext"
)

func TestLayoutMetrics(t *testing.T) {
	o := New(fonts.NewRegistry(""))
	m, err := o.LayoutMetrics(richtext.Plain("Hello\nworld"), fit.Font{}, 16, fit.Unbounded, fit.WrapWord)
	require.NoError(t, err)
	require.Equal(t, 2, m.LineCount())
	assert.Greater(t, m.Ascent, 0.0)
	assert.Greater(t, m.Descent, 0.0)
	assert.GreaterOrEqual(t, m.Leading, 0.0)
	assert.InDelta(t, 2*m.LineHeight()+m.Leading, m.Height(), 1e-9)
}

func TestMonospaceAdvances(t *testing.T) {
	o := New(fonts.NewRegistry(""))
	a, err := o.LayoutMetrics(richtext.Plain("iiii"), fit.Font{Family: "monospace"}, 12, fit.Unbounded, fit.WrapNone)
	require.NoError(t, err)
	b, err := o.LayoutMetrics(richtext.Plain("WWWW"), fit.Font{Family: "monospace"}, 12, fit.Unbounded, fit.WrapNone)
	require.NoError(t, err)
	assert.InDelta(t, a.Width(), b.Width(), 0.05)
}

func TestEngineWithXImageOracle(t *testing.T) {
	e, err := fit.New(fit.Options{Oracle: New(fonts.NewRegistry(""))})
	require.NoError(t, err)
	req := fit.NewRequest(richtext.Plain("Lorem ipsum dolor sit amet, consectetur adipiscing elit"), fit.Font{Size: 20})
	req.Mode = fit.ModeLines
	req.Width = 120
	req.Height = 60
	res := e.Fit(req)
	assert.Less(t, res.FontSize, 20.0)
	assert.LessOrEqual(t, res.Size.Height, 60.0)
	assert.False(t, res.Truncated)
}
