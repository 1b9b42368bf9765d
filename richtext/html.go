package richtext

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML 将带有简单内联标签的 HTML 片段转换为富文本。
// 支持 b/strong、i/em、u/ins、s/strike/del、sup、sub、font、span(style)、a、br、p；
// 未识别的标签只保留其文本。连续空白按 HTML 规则折叠为一个空格。
func ParseHTML(src string) (Text, error) {
	var out Text
	z := html.NewTokenizer(strings.NewReader(src))
	stack := []frame{{style: Style{}}}
	lastSpace := true

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return Text{}, fmt.Errorf("解析 HTML 文本失败: %w", err)
			}
			return out.TrimRightSpace(), nil

		case html.TextToken:
			s := collapseSpace(string(z.Text()), lastSpace)
			if s == "" {
				continue
			}
			out.Append(s, stack[len(stack)-1].style)
			lastSpace = strings.HasSuffix(s, " ")

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := strings.ToLower(string(name))
			attrs := map[string]string{}
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				attrs[strings.ToLower(string(k))] = string(v)
			}
			switch tag {
			case "br":
				out.Append("\n", stack[len(stack)-1].style)
				lastSpace = true
				continue
			case "p", "div":
				if !out.IsEmpty() && !strings.HasSuffix(out.String(), "\n") {
					out.Append("\n", stack[len(stack)-1].style)
				}
				lastSpace = true
			}
			if tt == html.SelfClosingTagToken {
				continue
			}
			st := applyTag(stack[len(stack)-1].style, tag, attrs)
			stack = append(stack, frame{tag: tag, style: st})

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := strings.ToLower(string(name))
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].tag == tag {
					stack = stack[:i]
					break
				}
			}
			if tag == "p" || tag == "div" {
				if !out.IsEmpty() && !strings.HasSuffix(out.String(), "\n") {
					out.Append("\n", stack[len(stack)-1].style)
				}
				lastSpace = true
			}
		}
	}
}

type frame struct {
	tag   string
	style Style
}

func applyTag(st Style, tag string, attrs map[string]string) Style {
	switch tag {
	case "b", "strong":
		st.Bold = true
	case "i", "em", "cite", "dfn":
		st.Italic = true
	case "u", "ins":
		st.Underline = true
	case "s", "strike", "del":
		st.Strikethrough = true
	case "sup":
		st.Superscript, st.Subscript = true, false
	case "sub":
		st.Subscript, st.Superscript = true, false
	case "font":
		if c := attrs["color"]; c != "" {
			st.Color = c
		}
		if f := attrs["face"]; f != "" {
			st.Family = f
		}
	case "a":
		st.Href = attrs["href"]
		st.ID = attrs["id"]
		st.Underline = true
	}
	if css := attrs["style"]; css != "" {
		st = applyCSS(st, css)
	}
	return st
}

// applyCSS 仅处理影响测量或渲染的少量内联样式属性。
func applyCSS(st Style, css string) Style {
	for _, decl := range strings.Split(css, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		lv := strings.ToLower(v)
		switch k {
		case "color":
			st.Color = v
		case "font-family":
			st.Family = strings.Trim(v, `"'`)
		case "font-weight":
			w, err := strconv.Atoi(lv)
			st.Bold = lv == "bold" || lv == "bolder" || err == nil && w >= 600
		case "font-style":
			st.Italic = lv == "italic" || lv == "oblique"
		case "text-decoration", "text-decoration-line":
			st.Underline = strings.Contains(lv, "underline")
			st.Strikethrough = strings.Contains(lv, "line-through")
		}
	}
	return st
}

func collapseSpace(s string, afterSpace bool) string {
	var b strings.Builder
	space := afterSpace
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return b.String()
}
