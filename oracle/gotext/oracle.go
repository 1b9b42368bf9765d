// Package gotextoracle measures text with HarfBuzz shaping from
// github.com/go-text/typesetting, so kerning and ligatures count towards
// line widths.
package gotextoracle

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/oracle/wrap"
	"github.com/ByLCY/labelfit/richtext"
)

// scriptScale is the size of superscript and subscript runs relative to
// the base size.
const scriptScale = 0.7

// Oracle is safe for concurrent use. Parsed fonts are cached per source;
// faces and shapers are created per call since neither may be shared.
type Oracle struct {
	fonts *fonts.Registry

	shaperPool sync.Pool

	mu        sync.RWMutex
	fontCache map[string]*font.Font // by fonts.Resource.Src
}

var _ fit.Oracle = (*Oracle)(nil)

func New(reg *fonts.Registry) *Oracle {
	return &Oracle{
		fonts: reg,
		shaperPool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		fontCache: make(map[string]*font.Font),
	}
}

// LayoutMetrics implements fit.Oracle.
func (o *Oracle) LayoutMetrics(text richtext.Text, f fit.Font, sizePt, maxWidth float64, mode fit.Wrap) (fit.Metrics, error) {
	if sizePt <= 0 {
		return fit.Metrics{}, fmt.Errorf("字号必须为正数: %g", sizePt)
	}
	base, err := o.face(f, richtext.Style{})
	if err != nil {
		return fit.Metrics{}, err
	}
	faces := map[richtext.Style]*font.Face{{}: base}
	var faceErr error
	measure := func(s string, st richtext.Style) float64 {
		key := richtext.Style{Bold: st.Bold, Italic: st.Italic, Family: st.Family}
		face, ok := faces[key]
		if !ok {
			if face, err = o.face(f, key); err != nil {
				faceErr, face = err, base
			}
			faces[key] = face
		}
		// Scripts are shaped at the base size and scaled afterwards; shaping
		// at the reduced size rounds glyph advances.
		w := fixedToFloat(o.shape([]rune(s), face, sizePt).Advance)
		if st.Superscript || st.Subscript {
			w *= scriptScale
		}
		return w
	}
	lines := wrap.Lines(text, maxWidth, mode, measure)
	if faceErr != nil {
		return fit.Metrics{}, faceErr
	}

	bounds := o.shape([]rune{' '}, base, sizePt).LineBounds
	ascent := math.Abs(fixedToFloat(bounds.Ascent))
	descent := math.Abs(fixedToFloat(bounds.Descent))
	return fit.Stack(lines, ascent, descent, fixedToFloat(bounds.Gap)), nil
}

func (o *Oracle) shape(runes []rune, face *font.Face, size float64) shaping.Output {
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      floatToFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	hb := o.shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	o.shaperPool.Put(hb)
	return out
}

// face resolves the font for f overlaid with st and wraps it in a fresh
// font.Face.
func (o *Oracle) face(f fit.Font, st richtext.Style) (*font.Face, error) {
	family := f.Family
	if st.Family != "" {
		family = st.Family
	}
	res, err := o.fonts.Resolve(family, f.Bold || st.Bold, f.Italic || st.Italic)
	if err != nil {
		return nil, err
	}
	parsed, err := o.getOrCreateFont(res)
	if err != nil {
		return nil, err
	}
	return font.NewFace(parsed), nil
}

func (o *Oracle) getOrCreateFont(res fonts.Resource) (*font.Font, error) {
	o.mu.RLock()
	if f, ok := o.fontCache[res.Src]; ok {
		o.mu.RUnlock()
		return f, nil
	}
	o.mu.RUnlock()

	o.mu.Lock()
	defer o.mu.Unlock()
	if f, ok := o.fontCache[res.Src]; ok {
		return f, nil
	}
	data, err := o.fonts.Load(res)
	if err != nil {
		return nil, err
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", res.Src, err)
	}
	o.fontCache[res.Src] = face.Font
	return face.Font, nil
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if richtext.IsBreakingSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
