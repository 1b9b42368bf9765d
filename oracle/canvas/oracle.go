// Package canvasoracle 基于 github.com/tdewolff/canvas 的字体度量实现 fit.Oracle。
package canvasoracle

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/oracle/wrap"
	"github.com/ByLCY/labelfit/richtext"
)

// Oracle measures text with canvas font faces. Loaded families are cached
// per font source for the life of the oracle.
type Oracle struct {
	fonts *fonts.Registry
	log   *slog.Logger

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily // by fonts.Resource.Src
	fallbackFamily *canvas.FontFamily
}

var _ fit.Oracle = (*Oracle)(nil)

// New creates an oracle resolving fonts through reg.
func New(reg *fonts.Registry) *Oracle {
	return &Oracle{
		fonts:        reg,
		log:          fit.Logger(),
		fontFamilies: map[string]*canvas.FontFamily{},
	}
}

// LayoutMetrics 实现 fit.Oracle：逐段按样式取字体面测宽，贪心折行后按基础字体的度量堆叠行高。
// canvas 的宽度与度量单位为 mm，这里统一换算为 pt。
func (o *Oracle) LayoutMetrics(text richtext.Text, font fit.Font, sizePt, maxWidth float64, mode fit.Wrap) (fit.Metrics, error) {
	if sizePt <= 0 {
		return fit.Metrics{}, fmt.Errorf("字号必须为正数: %g", sizePt)
	}
	base, err := o.Face(font, richtext.Style{}, sizePt, canvas.Black)
	if err != nil {
		return fit.Metrics{}, err
	}
	faces := map[richtext.Style]*canvas.FontFace{{}: base}
	var faceErr error
	measure := func(s string, st richtext.Style) float64 {
		key := measureKey(st)
		face, ok := faces[key]
		if !ok {
			face, err = o.Face(font, key, sizePt, canvas.Black)
			if err != nil {
				faceErr = err
				face = base
			}
			faces[key] = face
		}
		return face.TextWidth(s) * fit.MmToPt
	}
	lines := wrap.Lines(text, maxWidth, mode, measure)
	if faceErr != nil {
		return fit.Metrics{}, faceErr
	}

	m := base.Metrics()
	ascent := math.Abs(m.Ascent) * fit.MmToPt
	descent := math.Abs(m.Descent) * fit.MmToPt
	leading := math.Max(m.LineHeight*fit.MmToPt-ascent-descent, 0)
	return fit.Stack(lines, ascent, descent, leading), nil
}

// measureKey drops the attributes that do not change glyph advances so runs
// differing only in color or link share a face.
func measureKey(st richtext.Style) richtext.Style {
	return richtext.Style{
		Bold:        st.Bold,
		Italic:      st.Italic,
		Superscript: st.Superscript,
		Subscript:   st.Subscript,
		Family:      st.Family,
	}
}

// Face returns the canvas face for font overlaid with the run style st.
// Underline and strikethrough become face decorations; they do not change
// advances.
func (o *Oracle) Face(font fit.Font, st richtext.Style, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	familyName := font.Family
	if st.Family != "" {
		familyName = st.Family
	}
	res, err := o.fonts.Resolve(familyName, font.Bold || st.Bold, font.Italic || st.Italic)
	if err != nil {
		return nil, err
	}
	family, err := o.ensureFontFamily(res)
	if err != nil {
		return nil, err
	}
	variant := canvas.FontNormal
	switch {
	case st.Superscript:
		variant = canvas.FontSuperscript
	case st.Subscript:
		variant = canvas.FontSubscript
	}
	args := []interface{}{col, canvas.FontRegular, variant}
	if st.Underline {
		args = append(args, canvas.FontUnderline)
	}
	if st.Strikethrough {
		args = append(args, canvas.FontStrikethrough)
	}
	return family.Face(sizePt, args...), nil
}

func (o *Oracle) ensureFontFamily(res fonts.Resource) (*canvas.FontFamily, error) {
	o.fontMu.Lock()
	defer o.fontMu.Unlock()

	if family, ok := o.fontFamilies[res.Src]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily(res.Family + " " + res.Variant.String())
	if err := o.loadFontIntoFamily(family, res); err != nil {
		fallback, fbErr := o.fallback()
		if fbErr != nil {
			return nil, err
		}
		o.log.Warn("加载字体失败，使用后备字体", "src", res.Src, "err", err)
		o.fontFamilies[res.Src] = fallback
		return fallback, nil
	}
	o.fontFamilies[res.Src] = family
	return family, nil
}

func (o *Oracle) loadFontIntoFamily(family *canvas.FontFamily, res fonts.Resource) error {
	data, err := o.fonts.Load(res)
	if err != nil {
		return err
	}
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("解析字体 %s 失败: %w", res.Src, err)
	}
	return nil
}

// fallback must be called with fontMu held.
func (o *Oracle) fallback() (*canvas.FontFamily, error) {
	if o.fallbackFamily != nil {
		return o.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.BuiltinPrefix+"go-regular", "")
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("labelfit-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	o.fallbackFamily = family
	return family, nil
}
