package labels

import (
	"log/slog"
	"math"

	"github.com/ByLCY/labelfit/fit"
)

// Fitter 为每个标签维护一个 fit.Label，重复调用 Fit 时只重算发生变化的标签。
// Fitter 不是并发安全的，应在 UI 线程上使用。
type Fitter struct {
	engine *fit.Engine
	log    *slog.Logger
	labels map[string]*fit.Label
	// probes 保存组内标签未同步时的适配，使重复调用也能命中缓存
	probes map[string]*fit.Label
}

// NewFitter 创建使用指定引擎的 Fitter。
func NewFitter(e *fit.Engine, log *slog.Logger) *Fitter {
	if log == nil {
		log = fit.Logger()
	}
	return &Fitter{engine: e, log: log, labels: map[string]*fit.Label{}, probes: map[string]*fit.Label{}}
}

// Fit 计算全部标签。同一 group 的标签统一使用组内最小的适配字号。
func (f *Fitter) Fit(name string, specs []Spec) *Result {
	res := &Result{Name: name, Labels: make([]Fitted, len(specs))}
	groups := map[string][]int{}
	live := make(map[string]bool, len(specs))

	for i, spec := range specs {
		live[spec.ID] = true
		pool := f.labels
		if spec.Group != "" {
			pool = f.probes
			groups[spec.Group] = append(groups[spec.Group], i)
		}
		l := lookup(pool, f.engine, spec.ID)
		apply(l, spec.Request)
		res.Labels[i] = Fitted{Spec: spec, Result: l.Fit()}
	}

	for group, idx := range groups {
		size := math.Inf(1)
		for _, i := range idx {
			size = math.Min(size, res.Labels[i].Result.FontSize)
		}
		f.log.Debug("同步组字号", "group", group, "size", size, "labels", len(idx))
		for _, i := range idx {
			l := lookup(f.labels, f.engine, specs[i].ID)
			apply(l, specs[i].Request)
			l.SetSyncFontSize(size)
			res.Labels[i].Result = l.Fit()
		}
	}

	for _, pool := range []map[string]*fit.Label{f.labels, f.probes} {
		for id := range pool {
			if !live[id] {
				delete(pool, id)
			}
		}
	}
	return res
}

// Stats 汇总所有标签缓存的命中与未命中次数。
func (f *Fitter) Stats() (hits, misses int) {
	for _, pool := range []map[string]*fit.Label{f.labels, f.probes} {
		for _, l := range pool {
			hits += l.Cache().Hits
			misses += l.Cache().Misses
		}
	}
	return hits, misses
}

func lookup(pool map[string]*fit.Label, e *fit.Engine, id string) *fit.Label {
	l, ok := pool[id]
	if !ok {
		l = fit.NewLabel(e)
		pool[id] = l
	}
	return l
}

func apply(l *fit.Label, req fit.Request) {
	l.SetRichText(req.Text)
	l.SetFont(req.Font)
	l.SetMinFontSize(req.MinFontSize)
	l.SetMode(req.Mode)
	l.SetLines(req.Lines)
	l.SetLineBreak(req.LineBreak)
	l.SetBox(req.Width, req.Height)
	l.SetSyncFontSize(req.SyncFontSize)
}
