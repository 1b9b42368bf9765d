package fit

import "github.com/ByLCY/labelfit/richtext"

// Label holds the fitting inputs of one widget. Setters mark the result
// stale only when a value really changes; the fit itself runs lazily on
// the next call to Fit.
type Label struct {
	cache *Cache
	req   Request
	dirty bool
}

// NewLabel returns an empty label with unbounded box and default sizes.
func NewLabel(e *Engine) *Label {
	return &Label{
		cache: NewCache(e),
		req:   NewRequest(richtext.Text{}, Font{}),
		dirty: true,
	}
}

// SetText sets plain text.
func (l *Label) SetText(s string) { l.SetRichText(richtext.Plain(s)) }

// SetHTML parses src as HTML formatted text. On a parse error the previous
// text is kept.
func (l *Label) SetHTML(src string) error {
	t, err := richtext.ParseHTML(src)
	if err != nil {
		return err
	}
	l.SetRichText(t)
	return nil
}

func (l *Label) SetRichText(t richtext.Text) {
	if l.req.Text.Equal(t) {
		return
	}
	l.req.Text = t.Clone()
	l.dirty = true
}

func (l *Label) SetFont(f Font) {
	if l.req.Font == f {
		return
	}
	l.req.Font = f
	l.dirty = true
}

func (l *Label) SetMinFontSize(v float64) {
	if sameFloat(l.req.MinFontSize, v) {
		return
	}
	l.req.MinFontSize = v
	l.dirty = true
}

func (l *Label) SetMode(m Mode) {
	if l.req.Mode == m {
		return
	}
	l.req.Mode = m
	l.dirty = true
}

func (l *Label) SetLines(n int) {
	if l.req.Lines == n {
		return
	}
	l.req.Lines = n
	l.dirty = true
}

func (l *Label) SetLineBreak(b LineBreak) {
	if l.req.LineBreak == b {
		return
	}
	l.req.LineBreak = b
	l.dirty = true
}

// SetBox sets the available width and height in points.
func (l *Label) SetBox(width, height float64) {
	if sameFloat(l.req.Width, width) && sameFloat(l.req.Height, height) {
		return
	}
	l.req.Width, l.req.Height = width, height
	l.dirty = true
}

func (l *Label) SetSyncFontSize(v float64) {
	if sameFloat(l.req.SyncFontSize, v) {
		return
	}
	l.req.SyncFontSize = v
	l.dirty = true
}

// Request returns the current inputs.
func (l *Label) Request() Request { return l.req }

// Stale reports whether an input changed since the last Fit.
func (l *Label) Stale() bool { return l.dirty }

// Invalidate forces the next Fit to recompute, e.g. after fonts changed
// underneath the oracle.
func (l *Label) Invalidate() {
	l.cache.Reset()
	l.dirty = true
}

// Fit returns the fitted result, recomputing only when stale.
func (l *Label) Fit() Result {
	r := l.cache.Fit(l.req)
	l.dirty = false
	return r
}

// Cache exposes the label's memo, mainly for hit statistics.
func (l *Label) Cache() *Cache { return l.cache }
