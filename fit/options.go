package fit

import "log/slog"

// Engine defaults.
const (
	DefaultFontSize    = 17.0 // "Medium" named size
	DefaultMinFontSize = 4.0
	DefaultTolerance   = 0.1
	DefaultEllipsis    = "…"
)

// Options 配置适配引擎所需的依赖与数值参数，零值字段使用默认值。
type Options struct {
	Oracle Oracle
	Logger *slog.Logger // nil 时使用包级 Logger()

	DefaultFontSize    float64 // 请求字号 <= 0 时使用
	DefaultMinFontSize float64 // 请求下限 <= 0 时使用
	Tolerance          float64 // 字号二分搜索的收敛精度（pt）
	Ellipsis           string
}

func (o Options) withDefaults() Options {
	if o.DefaultFontSize <= 0 {
		o.DefaultFontSize = DefaultFontSize
	}
	if o.DefaultMinFontSize <= 0 {
		o.DefaultMinFontSize = DefaultMinFontSize
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Ellipsis == "" {
		o.Ellipsis = DefaultEllipsis
	}
	return o
}
