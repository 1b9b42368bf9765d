// Package config 读取 labelfit 的配置文件（TOML 或 YAML）。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
)

// 可选的测量后端。
const (
	OracleCanvas = "canvas"
	OracleGoText = "gotext"
	OracleXImage = "ximage"
)

// Config 是配置文件的完整内容，零值字段使用默认值。
type Config struct {
	Oracle   string `toml:"oracle" yaml:"oracle"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// FontDir 是相对字体路径的根目录；为空时取配置文件所在目录。
	FontDir string       `toml:"font_dir" yaml:"font_dir"`
	Engine  EngineConfig `toml:"engine" yaml:"engine"`
	Page    PageConfig   `toml:"page" yaml:"page"`
	Fonts   []FontEntry  `toml:"fonts" yaml:"fonts"`
	// Aliases 把别名映射到已注册的字体族。
	Aliases map[string]string `toml:"aliases" yaml:"aliases"`
	// Defaults 以 DSL 属性形式给出所有标签的默认值。
	Defaults map[string]string `toml:"defaults" yaml:"defaults"`
}

// EngineConfig 对应 fit.Options 的数值参数，单位为 pt。
type EngineConfig struct {
	DefaultFontSize    float64 `toml:"default_font_size" yaml:"default_font_size"`
	DefaultMinFontSize float64 `toml:"default_min_font_size" yaml:"default_min_font_size"`
	Tolerance          float64 `toml:"tolerance" yaml:"tolerance"`
	Ellipsis           string  `toml:"ellipsis" yaml:"ellipsis"`
}

// PageConfig 控制 PDF 预览的页面排布，单位为 mm。
type PageConfig struct {
	Width  float64 `toml:"width" yaml:"width"`
	Margin float64 `toml:"margin" yaml:"margin"`
	Gap    float64 `toml:"gap" yaml:"gap"`
	// Frames 为每个标签绘制适配框。
	Frames bool `toml:"frames" yaml:"frames"`
}

// FontEntry 注册一个字体族的各个字重文件。
type FontEntry struct {
	Family     string `toml:"family" yaml:"family"`
	Regular    string `toml:"regular" yaml:"regular"`
	Bold       string `toml:"bold" yaml:"bold"`
	Italic     string `toml:"italic" yaml:"italic"`
	BoldItalic string `toml:"bold_italic" yaml:"bold_italic"`
}

// Default 返回内置默认配置。
func Default() Config {
	return Config{
		Oracle:   OracleCanvas,
		LogLevel: "warn",
		Engine: EngineConfig{
			DefaultFontSize:    fit.DefaultFontSize,
			DefaultMinFontSize: fit.DefaultMinFontSize,
			Tolerance:          fit.DefaultTolerance,
			Ellipsis:           fit.DefaultEllipsis,
		},
		Page: PageConfig{Width: 210, Margin: 10, Gap: 6, Frames: true},
	}
}

// Load 读取配置文件并叠加到默认配置上；按扩展名选择 TOML 或 YAML。
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); errors.Is(err, io.EOF) {
			err = nil // 空文件
		}
	default:
		return cfg, fmt.Errorf("不支持的配置文件格式 %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if cfg.FontDir == "" {
		cfg.FontDir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.FontDir) {
		cfg.FontDir = filepath.Join(filepath.Dir(path), cfg.FontDir)
	}
	return cfg, cfg.Validate()
}

// Validate 检查配置中的取值范围。
func (c Config) Validate() error {
	switch c.Oracle {
	case OracleCanvas, OracleGoText, OracleXImage:
	default:
		return fmt.Errorf("未知的测量后端 %q", c.Oracle)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Engine.DefaultFontSize < 0 || c.Engine.DefaultMinFontSize < 0 || c.Engine.Tolerance < 0 {
		return fmt.Errorf("engine 参数不能为负数")
	}
	if c.Page.Width <= 2*c.Page.Margin {
		return fmt.Errorf("页面宽度 %.1fmm 小于两侧页边距", c.Page.Width)
	}
	for i, f := range c.Fonts {
		if strings.TrimSpace(f.Family) == "" {
			return fmt.Errorf("fonts[%d] 缺少 family", i)
		}
		if f.Regular == "" {
			return fmt.Errorf("字体族 %s 缺少 regular 字体", f.Family)
		}
	}
	return nil
}

// Level 解析日志级别。
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("未知的日志级别 %q", c.LogLevel)
	}
	return l, nil
}

// EngineOptions 生成 fit.Options；Oracle 与 Logger 由调用方填写。
func (c Config) EngineOptions() fit.Options {
	return fit.Options{
		DefaultFontSize:    c.Engine.DefaultFontSize,
		DefaultMinFontSize: c.Engine.DefaultMinFontSize,
		Tolerance:          c.Engine.Tolerance,
		Ellipsis:           c.Engine.Ellipsis,
	}
}

// Registry 返回包含内置字体与配置字体的注册表。
func (c Config) Registry() *fonts.Registry {
	reg := fonts.NewRegistry(c.FontDir)
	for _, f := range c.Fonts {
		for v, src := range [...]string{f.Regular, f.Bold, f.Italic, f.BoldItalic} {
			if src != "" {
				reg.Register(f.Family, fonts.Variant(v), src)
			}
		}
	}
	for alias, family := range c.Aliases {
		reg.Alias(alias, family)
	}
	return reg
}
