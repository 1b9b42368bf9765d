// Package fonts 管理测量与渲染共用的字体资源：内置字体、家族别名与字重/斜体变体。
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10italic"
	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10oblique"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinPrefix marks a font source compiled into the binary.
const BuiltinPrefix = "builtin:"

var builtin = map[string][]byte{
	"go-regular":           goregular.TTF,
	"go-bold":              gobold.TTF,
	"go-italic":            goitalic.TTF,
	"go-bolditalic":        gobolditalic.TTF,
	"go-mono":              gomono.TTF,
	"go-mono-bold":         gomonobold.TTF,
	"go-mono-italic":       gomonoitalic.TTF,
	"go-mono-bolditalic":   gomonobolditalic.TTF,
	"lmroman10-regular":    lmroman10regular.TTF,
	"lmroman10-bold":       lmroman10bold.TTF,
	"lmroman10-italic":     lmroman10italic.TTF,
	"lmroman10-bolditalic": lmroman10bolditalic.TTF,
	"lmsans10-regular":     lmsans10regular.TTF,
	"lmsans10-bold":        lmsans10bold.TTF,
	"lmsans10-oblique":     lmsans10oblique.TTF,
	"lmmono10-regular":     lmmono10regular.TTF,
	"lmmono10-italic":      lmmono10italic.TTF,
}

// Builtin returns the names accepted after "builtin:".
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 返回字体字节数据。src 可写为 "builtin:go-regular"，或相对 baseDir 的文件路径。
func Load(src, baseDir string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体来源为空")
	}
	if name, ok := strings.CutPrefix(src, BuiltinPrefix); ok {
		data, found := builtin[name]
		if !found {
			return nil, fmt.Errorf("找不到内置字体资源 %s", src)
		}
		return data, nil
	}
	path := src
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
		}
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
