package fit

import (
	"errors"

	"github.com/ByLCY/labelfit/richtext"
)

// ErrNoOracle is returned by New when no text layout facility is configured.
var ErrNoOracle = errors.New("未配置文本测量后端")

// Oracle lays text out with a native text stack and reports line metrics.
// sizePt is the font size in points, maxWidth the wrapping width in points
// (Unbounded for none). Implementations must not wrap when wrap is WrapNone.
type Oracle interface {
	LayoutMetrics(text richtext.Text, font Font, sizePt, maxWidth float64, wrap Wrap) (Metrics, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(text richtext.Text, font Font, sizePt, maxWidth float64, wrap Wrap) (Metrics, error)

func (f OracleFunc) LayoutMetrics(text richtext.Text, font Font, sizePt, maxWidth float64, wrap Wrap) (Metrics, error) {
	return f(text, font, sizePt, maxWidth, wrap)
}

// CountingOracle counts the calls forwarded to the wrapped oracle.
type CountingOracle struct {
	Oracle Oracle
	Calls  int
}

func (c *CountingOracle) LayoutMetrics(text richtext.Text, font Font, sizePt, maxWidth float64, wrap Wrap) (Metrics, error) {
	c.Calls++
	return c.Oracle.LayoutMetrics(text, font, sizePt, maxWidth, wrap)
}
