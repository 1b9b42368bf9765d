package fit

import "github.com/ByLCY/labelfit/richtext"

// linesFit solves L*lineHeight + (L-1)*leading = height for the font size,
// assuming line height and leading scale linearly with the size.
func (e *Engine) linesFit(text richtext.Text, font Font, requested float64, lines int, height float64, wrap Wrap) float64 {
	m := e.layout(text, font, requested, Unbounded, wrap)
	lh := m.LineHeight()
	if lh <= 0 {
		return requested
	}
	lineHeightRatio := lh / requested
	leadingRatio := m.Leading / requested
	l := float64(lines)
	return height/(l+leadingRatio*(l-1))/lineHeightRatio - lineFitMargin
}

// heightFit finds the largest size whose wrapped block fits the height.
func (e *Engine) heightFit(text richtext.Text, font Font, floor, requested, width, height float64, wrap Wrap) float64 {
	return e.search(floor, requested, func(size float64) bool {
		return e.layout(text, font, size, width, wrap).Height() <= height+heightEpsilon
	})
}

// widthFit finds the largest size that wraps into at most lines lines.
func (e *Engine) widthFit(text richtext.Text, font Font, floor, requested float64, lines int, width float64, wrap Wrap) float64 {
	return e.search(floor, requested, func(size float64) bool {
		return e.layout(text, font, size, width, wrap).LineCount() <= lines
	})
}

// search bisects [floor, requested] for the largest size accepted by fits,
// to within Options.Tolerance. fits must be monotone: true below some
// threshold, false above. When nothing fits the floor is returned.
func (e *Engine) search(floor, requested float64, fits func(float64) bool) float64 {
	if fits(requested) {
		return requested
	}
	lo, hi := floor, requested
	steps := 0
	for hi-lo > e.opts.Tolerance {
		mid := (lo + hi) / 2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid
		}
		steps++
	}
	e.log.Debug("字号搜索", "floor", floor, "requested", requested, "result", lo, "steps", steps)
	return lo
}
