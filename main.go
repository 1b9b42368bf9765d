package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/labelfit/config"
	"github.com/ByLCY/labelfit/dsl"
	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/labels"
	canvasoracle "github.com/ByLCY/labelfit/oracle/canvas"
	gotextoracle "github.com/ByLCY/labelfit/oracle/gotext"
	ximageoracle "github.com/ByLCY/labelfit/oracle/ximage"
	"github.com/ByLCY/labelfit/renderer"
	canvasrenderer "github.com/ByLCY/labelfit/renderer/canvas"
)

// options 汇总命令行参数。
type options struct {
	input   string
	output  string
	debug   string
	config  string
	oracle  string
	data    any
	verbose bool
}

func main() {
	input := flag.String("in", "examples/demo.labels", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 预览输出路径，为空则不渲染")
	debug := flag.String("debug", "", "适配结果调试 JSON 输出路径")
	configPath := flag.String("config", "", "配置文件路径（.toml / .yaml）")
	oracleName := flag.String("oracle", "", "测量后端：canvas、gotext 或 ximage，覆盖配置文件")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据，以 @ 开头表示文件路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	inputData, err := parseData(*dataJSON)
	if err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}

	res, err := run(context.Background(), options{
		input:   *input,
		output:  *output,
		debug:   *debug,
		config:  *configPath,
		oracle:  *oracleName,
		data:    inputData,
		verbose: *verbose,
	})
	if err != nil {
		log.Fatalf("适配失败: %v", err)
	}
	printSummary(res)
	if *output != "" {
		fmt.Printf("已生成 PDF：%s\n", *output)
	}
}

func parseData(src string) (any, error) {
	if src == "" {
		return nil, nil
	}
	raw := []byte(src)
	if path, ok := strings.CutPrefix(src, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// run 串联配置、解析、适配与渲染。适配在 UI 线程上执行，与平台测量接口的线程约束一致。
func run(ctx context.Context, opts options) (*labels.Result, error) {
	cfg := config.Default()
	if opts.config != "" {
		var err error
		if cfg, err = config.Load(opts.config); err != nil {
			return nil, err
		}
	} else {
		cfg.FontDir = filepath.Dir(opts.input)
	}
	if opts.oracle != "" {
		cfg.Oracle = opts.oracle
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	fit.SetLogger(logger)
	defer fit.SetLogger(nil)

	file, err := os.Open(opts.input)
	if err != nil {
		return nil, fmt.Errorf("无法打开 DSL 文件 %s: %w", opts.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	specs, err := labels.Build(doc, opts.data, labels.BuildOptions{Defaults: cfg.Defaults})
	if err != nil {
		return nil, fmt.Errorf("构建标签失败: %w", err)
	}
	for _, s := range specs {
		if len(s.Missing) > 0 {
			logger.Warn("绑定数据缺失", "label", s.ID, "paths", s.Missing)
		}
	}

	reg := cfg.Registry()
	canvasFaces := canvasoracle.New(reg)
	engineOpts := cfg.EngineOptions()
	engineOpts.Logger = logger
	engineOpts.Oracle = newOracle(cfg.Oracle, reg, canvasFaces)
	engine, err := fit.New(engineOpts)
	if err != nil {
		return nil, err
	}

	result, err := fitOnUIThread(ctx, engine, logger, doc.Name, specs)
	if err != nil {
		return nil, err
	}

	if opts.debug != "" {
		if err := writeDebug(result, opts.debug); err != nil {
			return nil, err
		}
	}
	if opts.output != "" {
		r := canvasrenderer.NewRenderer(canvasFaces, canvasrenderer.Options{
			PageWidth: cfg.Page.Width,
			Margin:    cfg.Page.Margin,
			Gap:       cfg.Page.Gap,
			Frames:    cfg.Page.Frames,
		})
		if err := render(r, result, opts.output); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func newOracle(name string, reg *fonts.Registry, canvasFaces *canvasoracle.Oracle) fit.Oracle {
	switch name {
	case config.OracleGoText:
		return gotextoracle.New(reg)
	case config.OracleXImage:
		return ximageoracle.New(reg)
	default:
		return canvasFaces
	}
}

// fitOnUIThread 在当前 goroutine 上运行 UI 线程，另起 goroutine 提交适配任务。
func fitOnUIThread(ctx context.Context, engine *fit.Engine, logger *slog.Logger, name string, specs []labels.Spec) (*labels.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("适配任务未开始: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := fit.NewUIThread()
	var result *labels.Result
	errc := make(chan error, 1)
	go func() {
		defer cancel()
		errc <- ui.Call(ctx, func(context.Context) {
			result = labels.NewFitter(engine, logger).Fit(name, specs)
		})
	}()
	_ = ui.Run(ctx)
	if err := <-errc; err != nil {
		return nil, fmt.Errorf("适配任务未完成: %w", err)
	}
	return result, nil
}

func render(r renderer.Renderer, result *labels.Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *labels.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := labels.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func printSummary(res *labels.Result) {
	fmt.Printf("%s: %d 个标签\n", res.Name, len(res.Labels))
	for _, l := range res.Labels {
		mark := ""
		if l.Result.Truncated {
			mark = " …"
		}
		fmt.Printf("  %-16s %6.2fpt  %d 行  %4.0fx%-4.0f%s\n",
			l.ID, l.Result.FontSize, l.Result.Lines, l.Result.Size.Width, l.Result.Size.Height, mark)
	}
}
