package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/fonts"
	"github.com/ByLCY/labelfit/labels"
	canvasoracle "github.com/ByLCY/labelfit/oracle/canvas"
	"github.com/ByLCY/labelfit/renderer"
	"github.com/ByLCY/labelfit/richtext"
)

const (
	frameWidth  = 0.2 // mm
	captionSize = 6.0 // pt
)

var (
	captionColor = labels.Color{R: 120, G: 120, B: 120}
	frameColor   = labels.Color{R: 180, G: 180, B: 180}
)

// Renderer draws fitted labels into a PDF preview via github.com/tdewolff/canvas.
// Labels are stacked top to bottom, each with a caption and its fitting box.
type Renderer struct {
	faces *canvasoracle.Oracle
	opts  Options
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the page layout, in millimeters.
type Options struct {
	PageWidth  float64
	PageHeight float64 // 超出后另起一页
	Margin     float64
	Gap        float64
	Frames     bool
}

func (o Options) withDefaults() Options {
	if o.PageWidth <= 0 {
		o.PageWidth = 210
	}
	if o.PageHeight <= 0 {
		o.PageHeight = 297
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Gap < 0 {
		o.Gap = 0
	}
	return o
}

// NewRenderer creates a renderer sharing font families with the measuring
// oracle, so preview glyphs match the measured ones.
func NewRenderer(faces *canvasoracle.Oracle, opts Options) *Renderer {
	return &Renderer{faces: faces, opts: opts.withDefaults()}
}

type block struct {
	label labels.Fitted
	y     float64 // caption top
	w, h  float64 // box size
}

type page struct {
	width, height float64
	blocks        []block
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *labels.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Labels) == 0 {
		return nil, fmt.Errorf("缺少可渲染的标签")
	}
	captionFace, err := r.captionFace()
	if err != nil {
		return nil, err
	}
	pages := r.paginate(result.Labels, captionHeight(captionFace))

	var buf bytes.Buffer
	writer := pdf.New(&buf, pages[0].width, pages[0].height, nil)
	r.applyMeta(writer, result)
	for i, pg := range pages {
		if i > 0 {
			writer.NewPage(pg.width, pg.height)
		}
		c := canvas.New(pg.width, pg.height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标保持左上角为原点

		for _, b := range pg.blocks {
			if err := r.drawLabel(ctx, b, captionFace); err != nil {
				return nil, fmt.Errorf("绘制标签 %s 失败: %w", b.label.ID, err)
			}
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, result *labels.Result) {
	if writer == nil {
		return
	}
	ids := make([]string, 0, len(result.Labels))
	for _, l := range result.Labels {
		ids = append(ids, l.ID)
	}
	writer.SetInfo(result.Name, "labelfit preview", strings.Join(ids, ", "), "", "labelfit")
}

// paginate stacks label blocks and starts a new page when the next block
// does not fit. A block taller than a page gets a page of its own.
func (r *Renderer) paginate(fitted []labels.Fitted, captionH float64) []page {
	o := r.opts
	var pages []page
	cur := page{width: o.PageWidth, height: o.PageHeight}
	y := o.Margin
	for _, l := range fitted {
		w, h := boxSize(l)
		blockH := captionH + h
		if len(cur.blocks) > 0 && y+blockH > cur.height-o.Margin {
			pages = append(pages, cur)
			cur = page{width: o.PageWidth, height: o.PageHeight}
			y = o.Margin
		}
		cur.width = math.Max(cur.width, w+2*o.Margin)
		cur.height = math.Max(cur.height, blockH+2*o.Margin)
		cur.blocks = append(cur.blocks, block{label: l, y: y, w: w, h: h})
		y += blockH + o.Gap
	}
	return append(pages, cur)
}

// boxSize returns the label box in mm: the requested box where bounded,
// the measured content otherwise.
func boxSize(l labels.Fitted) (w, h float64) {
	w, h = l.Request.Width, l.Request.Height
	if fit.IsUnbounded(w) || w <= 0 {
		w = l.Result.Size.Width
	}
	if fit.IsUnbounded(h) || h <= 0 {
		h = l.Result.Size.Height
	}
	return w * fit.PtToMm, h * fit.PtToMm
}

func (r *Renderer) captionFace() (*canvas.FontFace, error) {
	return r.faces.Face(fit.Font{Family: fonts.DefaultFamily}, richtext.Style{}, captionSize, colorFromLabel(captionColor))
}

func captionHeight(face *canvas.FontFace) float64 {
	return face.Metrics().LineHeight + 1
}

func caption(l labels.Fitted) string {
	s := fmt.Sprintf("%s  %.1fpt  %d行", l.ID, l.Result.FontSize, l.Result.Lines)
	if l.Group != "" {
		s += "  [" + l.Group + "]"
	}
	if l.Result.Truncated {
		s += "  已截断"
	}
	if len(l.Missing) > 0 {
		s += "  缺少 " + strings.Join(l.Missing, ",")
	}
	return s
}

func (r *Renderer) drawLabel(ctx *canvas.Context, b block, captionFace *canvas.FontFace) error {
	x := r.opts.Margin
	ctx.DrawText(x, b.y+captionFace.Metrics().Ascent, canvas.NewTextLine(captionFace, caption(b.label), canvas.Left))

	top := b.y + captionHeight(captionFace)
	if r.opts.Frames {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLabel(frameColor))
		ctx.SetStrokeWidth(frameWidth)
		ctx.DrawPath(x, top, canvas.Rectangle(b.w, b.h))
	}
	return r.drawText(ctx, b.label, x, top, b.w)
}

// drawText 按适配结果的行框逐行绘制；行框坐标为 pt，页面坐标为 mm。
func (r *Renderer) drawText(ctx *canvas.Context, l labels.Fitted, x, top, boxW float64) error {
	res := l.Result
	if len(res.LineBoxes) == 0 {
		return nil
	}
	base, err := r.faces.Face(l.Request.Font, richtext.Style{}, res.FontSize, colorFromLabel(l.Color))
	if err != nil {
		return err
	}
	descent := math.Abs(base.Metrics().Descent)

	for _, lb := range res.LineBoxes {
		lineW := lb.Width * fit.PtToMm
		cursorX := x
		switch l.Align {
		case "center":
			cursorX += (boxW - lineW) / 2
		case "right":
			cursorX += boxW - lineW
		}
		baseline := top + lb.Bottom*fit.PtToMm - descent
		line := res.Text.Slice(lb.Start, lb.End).TrimRightSpace()
		for _, run := range line.Runs {
			face, err := r.faces.Face(l.Request.Font, run.Style, res.FontSize, runColor(run.Style, l.Color))
			if err != nil {
				return err
			}
			ctx.DrawText(cursorX, baseline, canvas.NewTextLine(face, run.Text, canvas.Left))
			cursorX += face.TextWidth(run.Text)
		}
	}
	return nil
}

func runColor(st richtext.Style, fallback labels.Color) color.Color {
	if st.Color != "" {
		if c, err := labels.ParseColor(st.Color); err == nil {
			return colorFromLabel(c)
		}
	}
	return colorFromLabel(fallback)
}

func colorFromLabel(c labels.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
