// Package labels 把 .labels 文档转换为适配请求，并批量计算适配结果。
package labels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/labelfit/binding"
	"github.com/ByLCY/labelfit/dsl"
	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/richtext"
)

// Build 根据 DSL AST 与绑定数据生成每个标签的适配请求，按文档顺序返回。
func Build(doc *dsl.Document, data any, opts BuildOptions) ([]Spec, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}

	defaults := map[string]string{}
	for k, v := range opts.Defaults {
		setAttr(defaults, k, v)
	}
	for _, sec := range doc.Sections {
		if sec.Defaults != nil {
			collectAttrs(defaults, sec.Defaults.Block)
		}
	}

	var specs []Spec
	seen := map[string]bool{}
	add := func(label *dsl.LabelSection, group string, inherited map[string]string) error {
		if seen[label.ID] {
			return fmt.Errorf("标签 %s 重复定义（第 %d 行）", label.ID, label.Pos.Line)
		}
		seen[label.ID] = true
		attrs := mergeAttributes(inherited, label.Block)
		spec, err := composeSpec(label.ID, attrs, data)
		if err != nil {
			return err
		}
		spec.Group = group
		specs = append(specs, spec)
		return nil
	}

	for _, sec := range doc.Sections {
		switch {
		case sec.Label != nil:
			if err := add(sec.Label, "", defaults); err != nil {
				return nil, err
			}
		case sec.Group != nil:
			shared := mergeAttributes(defaults, nil)
			for _, entry := range sec.Group.Entries {
				if entry.Assignment != nil {
					setAttr(shared, entry.Assignment.Key, entry.Assignment.Value.Text())
				}
			}
			for _, entry := range sec.Group.Entries {
				if entry.Label == nil {
					continue
				}
				if err := add(entry.Label, sec.Group.Name, shared); err != nil {
					return nil, err
				}
			}
		}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("文档中缺少 label 段落")
	}
	return specs, nil
}

func collectAttrs(out map[string]string, block *dsl.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Assignment != nil:
			setAttr(out, stmt.Assignment.Key, stmt.Assignment.Value.Text())
		case stmt.Text != nil:
			setAttr(out, "text", out["text"]+string(stmt.Text.Value))
		}
	}
}

// setAttr stores a property; text and html replace each other.
func setAttr(attrs map[string]string, key, value string) {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "text":
		delete(attrs, "html")
	case "html":
		delete(attrs, "text")
	}
	attrs[key] = value
}

func mergeAttributes(inherited map[string]string, block *dsl.Block) map[string]string {
	out := make(map[string]string, len(inherited))
	for k, v := range inherited {
		out[k] = v
	}
	if block != nil {
		// 标签内的裸文本与 text: 都从空白开始，不拼接继承来的文本
		if hasText(block) {
			delete(out, "text")
		}
		collectAttrs(out, block)
	}
	return out
}

func hasText(block *dsl.Block) bool {
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			return true
		}
	}
	return false
}

func composeSpec(id string, attrs map[string]string, data any) (Spec, error) {
	fail := func(key string, err error) (Spec, error) {
		return Spec{}, fmt.Errorf("标签 %s: 属性 %s=%q 无法解析: %w", id, key, attrs[key], err)
	}

	var text richtext.Text
	var missing []string
	if src, ok := attrs["html"]; ok {
		missing = binding.Missing(src, data)
		t, err := richtext.ParseHTML(binding.InterpolateHTML(src, data))
		if err != nil {
			return fail("html", err)
		}
		text = t
	} else {
		src := attrs["text"]
		missing = binding.Missing(src, data)
		text = richtext.Plain(binding.Interpolate(src, data))
	}

	font := parseFont(attrs["font"])
	if v, ok := attrs["family"]; ok {
		font.Family = v
	}
	for _, flag := range []struct {
		key string
		dst *bool
	}{{"bold", &font.Bold}, {"italic", &font.Italic}} {
		if v, ok := attrs[flag.key]; ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fail(flag.key, err)
			}
			*flag.dst = b
		}
	}
	size, err := parseFontSize(attrs["size"])
	if err != nil {
		return fail("size", err)
	}
	font.Size = size

	req := fit.NewRequest(text, font)
	if v, ok := attrs["min-size"]; ok {
		if req.MinFontSize, err = parseFontSize(v); err != nil {
			return fail("min-size", err)
		}
	}
	if req.Mode, err = fit.ParseMode(attrs["fit"]); err != nil {
		return fail("fit", err)
	}
	if v, ok := attrs["lines"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fail("lines", fmt.Errorf("行数必须为非负整数"))
		}
		req.Lines = n
	}
	if req.Width, err = parseExtent(attrs["width"]); err != nil {
		return fail("width", err)
	}
	if req.Height, err = parseExtent(attrs["height"]); err != nil {
		return fail("height", err)
	}
	if req.LineBreak, err = fit.ParseLineBreak(attrs["break"]); err != nil {
		return fail("break", err)
	}
	if v, ok := attrs["sync"]; ok {
		if req.SyncFontSize, err = strconv.ParseFloat(v, 64); err != nil {
			return fail("sync", err)
		}
	}

	col := DefaultColor
	if v, ok := attrs["color"]; ok {
		if col, err = ParseColor(v); err != nil {
			return fail("color", err)
		}
	}
	align := strings.ToLower(attrs["align"])
	switch align {
	case "", "left", "center", "right":
	default:
		return fail("align", fmt.Errorf("仅支持 left/center/right"))
	}

	return Spec{
		ID:      id,
		Request: req,
		Color:   col,
		Align:   align,
		Missing: missing,
	}, nil
}

// parseFont reads "serif bold italic" style word lists: bold and italic are
// flags, the remaining words form the family name.
func parseFont(value string) fit.Font {
	var f fit.Font
	var family []string
	for _, w := range strings.Fields(value) {
		switch strings.ToLower(w) {
		case "bold":
			f.Bold = true
		case "italic", "oblique":
			f.Italic = true
		case "regular", "normal":
		default:
			family = append(family, w)
		}
	}
	f.Family = strings.Join(family, " ")
	return f
}

// parseFontSize accepts a length ("12pt", "4mm") or a named size
// ("small", "large"). Empty means the engine default.
func parseFontSize(value string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	if n, ok := fonts.ParseNamedSize(value); ok {
		return n.Points(), nil
	}
	l, err := fit.ParseLength(value)
	if err != nil {
		return 0, err
	}
	if l.Value <= 0 {
		return 0, fmt.Errorf("字号必须为正数")
	}
	return l.ToPT(), nil
}

// parseExtent parses a box dimension; empty, "auto" and "none" mean
// unbounded.
func parseExtent(value string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto", "none":
		return fit.Unbounded, nil
	}
	l, err := fit.ParseLength(value)
	if err != nil {
		return 0, err
	}
	return l.ToPT(), nil
}

// ParseColor 解析 #rgb、#rrggbb 与 #rrggbbaa（忽略透明度）形式的颜色。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return hexColor(r, g, b)
	case 6, 8:
		return hexColor(value[0:2], value[2:4], value[4:6])
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func hexColor(r, g, b string) (Color, error) {
	var out [3]int
	for i, s := range []string{r, g, b} {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s%s%s 无法解析: %w", r, g, b, err)
		}
		out[i] = int(v)
	}
	return Color{R: out[0], G: out[1], B: out[2]}, nil
}
