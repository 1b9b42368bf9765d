// Package ximageoracle measures text with golang.org/x/image/font/opentype.
// It uses plain advances plus kerning and no shaping, the cheapest of the
// three measurement backends.
package ximageoracle

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/oracle/wrap"
	"github.com/ByLCY/labelfit/richtext"
)

const scriptScale = 0.7

// Oracle caches parsed fonts; faces are created per call and closed again
// because an opentype face is not safe for concurrent use.
type Oracle struct {
	fonts *fonts.Registry

	mu     sync.Mutex
	parsed map[string]*opentype.Font
}

var _ fit.Oracle = (*Oracle)(nil)

func New(reg *fonts.Registry) *Oracle {
	return &Oracle{fonts: reg, parsed: map[string]*opentype.Font{}}
}

type faceKey struct {
	style richtext.Style
	size  float64
}

// LayoutMetrics implements fit.Oracle.
func (o *Oracle) LayoutMetrics(text richtext.Text, f fit.Font, sizePt, maxWidth float64, mode fit.Wrap) (fit.Metrics, error) {
	if sizePt <= 0 {
		return fit.Metrics{}, fmt.Errorf("字号必须为正数: %g", sizePt)
	}
	base, err := o.newFace(f, richtext.Style{}, sizePt)
	if err != nil {
		return fit.Metrics{}, err
	}
	faces := map[faceKey]font.Face{{size: sizePt}: base}
	defer func() {
		for _, face := range faces {
			_ = face.Close()
		}
	}()

	var faceErr error
	measure := func(s string, st richtext.Style) float64 {
		key := faceKey{style: richtext.Style{Bold: st.Bold, Italic: st.Italic, Family: st.Family}, size: sizePt}
		if st.Superscript || st.Subscript {
			key.size *= scriptScale
		}
		face, ok := faces[key]
		if !ok {
			if face, err = o.newFace(f, key.style, key.size); err != nil {
				faceErr = err
				return fixedToFloat(font.MeasureString(base, s))
			}
			faces[key] = face
		}
		return fixedToFloat(font.MeasureString(face, s))
	}
	lines := wrap.Lines(text, maxWidth, mode, measure)
	if faceErr != nil {
		return fit.Metrics{}, faceErr
	}

	m := base.Metrics()
	ascent, descent := fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
	return fit.Stack(lines, ascent, descent, fixedToFloat(m.Height)-ascent-descent), nil
}

func (o *Oracle) newFace(f fit.Font, st richtext.Style, size float64) (font.Face, error) {
	family := f.Family
	if st.Family != "" {
		family = st.Family
	}
	res, err := o.fonts.Resolve(family, f.Bold || st.Bold, f.Italic || st.Italic)
	if err != nil {
		return nil, err
	}
	parsed, err := o.parse(res)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体面 %s 失败: %w", res.Src, err)
	}
	return face, nil
}

func (o *Oracle) parse(res fonts.Resource) (*opentype.Font, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if f, ok := o.parsed[res.Src]; ok {
		return f, nil
	}
	data, err := o.fonts.Load(res)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", res.Src, err)
	}
	o.parsed[res.Src] = f
	return f, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
