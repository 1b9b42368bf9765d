package labels

// 该文件定义标签描述与适配结果，供构建、渲染与调试 JSON 共用。

import "github.com/ByLCY/labelfit/fit"

// Spec 是一个待适配的标签：适配请求加上仅供渲染使用的属性。
type Spec struct {
	ID      string      `json:"id"`
	Group   string      `json:"group,omitempty"`
	Request fit.Request `json:"request"`
	Color   Color       `json:"color"`
	Align   string      `json:"align,omitempty"`
	// Missing 列出数据中找不到的 ${...} 占位符。
	Missing []string `json:"missing,omitempty"`
}

// Fitted 保存一个标签的适配结果。
type Fitted struct {
	Spec
	Result fit.Result `json:"result"`
}

// Result 是一个文档的全部适配结果。
type Result struct {
	Name   string   `json:"name"`
	Labels []Fitted `json:"labels"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultColor is used when a label sets no color.
var DefaultColor = Color{R: 30, G: 30, B: 30}

// BuildOptions 配置构建阶段的默认属性。
type BuildOptions struct {
	// Defaults 以 DSL 属性的字符串形式给出，优先级低于文档中的 defaults 段。
	Defaults map[string]string
}
