package fit

// 该文件定义适配请求、结果与测量数据，供引擎、测量后端与调试 JSON 共用。

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/labelfit/richtext"
)

// Unbounded marks a width or height with no constraint. Any value at or
// above two thirds of it counts as unbounded.
const Unbounded = float64(1 << 30)

// IsUnbounded reports whether v should be treated as "no constraint".
func IsUnbounded(v float64) bool { return v >= Unbounded*2/3 }

// Mode selects how the font size may shrink.
type Mode int

const (
	ModeNone  Mode = iota // keep the requested size
	ModeWidth             // shrink until the text wraps into Lines lines
	ModeLines             // shrink until Lines lines fill the height
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeWidth:
		return "width"
	case ModeLines:
		return "lines"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "width", "fit-width":
		return ModeWidth, nil
	case "lines", "fit-lines":
		return ModeLines, nil
	}
	return ModeNone, fmt.Errorf("未知的适配模式 %q", s)
}

// LineBreak is the label's line-break policy.
type LineBreak int

const (
	BreakWordWrap LineBreak = iota
	BreakCharacterWrap
	BreakNoWrap
	BreakHeadTruncation
	BreakMiddleTruncation
	BreakTailTruncation
)

var lineBreakNames = [...]string{"word", "character", "nowrap", "head", "middle", "tail"}

func (b LineBreak) String() string {
	if b >= 0 && int(b) < len(lineBreakNames) {
		return lineBreakNames[b]
	}
	return fmt.Sprintf("LineBreak(%d)", int(b))
}

// ParseLineBreak accepts the names produced by LineBreak.String.
func ParseLineBreak(s string) (LineBreak, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return BreakWordWrap, nil
	}
	for i, name := range lineBreakNames {
		if v == name || v == name+"-wrap" || v == name+"-truncation" {
			return LineBreak(i), nil
		}
	}
	return BreakWordWrap, fmt.Errorf("未知的折行策略 %q", s)
}

// Wrap returns the wrapping rule handed to the oracle.
func (b LineBreak) Wrap() Wrap {
	switch b {
	case BreakNoWrap:
		return WrapNone
	case BreakCharacterWrap:
		return WrapCharacter
	default:
		return WrapWord
	}
}

// Ellipsize returns where a single overflowing line gets its ellipsis.
func (b LineBreak) Ellipsize() Ellipsize {
	switch b {
	case BreakHeadTruncation:
		return EllipsizeStart
	case BreakMiddleTruncation:
		return EllipsizeMiddle
	case BreakNoWrap:
		return EllipsizeNone
	default:
		return EllipsizeEnd
	}
}

// Wrap is the line breaking rule the oracle applies.
type Wrap int

const (
	WrapWord      Wrap = iota // break at white space, split words that do not fit
	WrapCharacter             // break between any two characters
	WrapNone                  // break at explicit newlines only
)

func (w Wrap) String() string {
	switch w {
	case WrapWord:
		return "word"
	case WrapCharacter:
		return "character"
	case WrapNone:
		return "none"
	}
	return fmt.Sprintf("Wrap(%d)", int(w))
}

// Ellipsize 描述单行溢出时省略号的位置。
type Ellipsize int

const (
	EllipsizeNone Ellipsize = iota
	EllipsizeStart
	EllipsizeMiddle
	EllipsizeEnd
)

func (e Ellipsize) String() string {
	switch e {
	case EllipsizeStart:
		return "start"
	case EllipsizeMiddle:
		return "middle"
	case EllipsizeEnd:
		return "end"
	}
	return "none"
}

// Font describes the base face. Size is in points; a value <= 0 means the
// engine default.
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
}

// Size is a width/height pair in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Request 是一次适配计算的完整输入，创建后不应修改。
type Request struct {
	Text        richtext.Text `json:"text"`
	Font        Font          `json:"font"`
	MinFontSize float64       `json:"minFontSize"` // <= 0 表示使用默认下限
	Mode        Mode          `json:"mode"`
	Lines       int           `json:"lines"` // 0 表示自动
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	LineBreak   LineBreak     `json:"lineBreak"`
	// SyncFontSize >= 0 forces the final size so a group of labels can share
	// the smallest fitted size. Negative disables it.
	SyncFontSize float64 `json:"syncFontSize"`
}

// NewRequest returns a request with the "unset" sentinels filled in.
func NewRequest(text richtext.Text, font Font) Request {
	return Request{
		Text:         text,
		Font:         font,
		MinFontSize:  -1,
		Width:        Unbounded,
		Height:       Unbounded,
		SyncFontSize: -1,
	}
}

// Equal compares every input bit for bit; it is the cache key check.
func (r Request) Equal(o Request) bool {
	return r.Text.Equal(o.Text) &&
		r.Font.Family == o.Font.Family &&
		sameFloat(r.Font.Size, o.Font.Size) &&
		r.Font.Bold == o.Font.Bold &&
		r.Font.Italic == o.Font.Italic &&
		sameFloat(r.MinFontSize, o.MinFontSize) &&
		r.Mode == o.Mode &&
		r.Lines == o.Lines &&
		sameFloat(r.Width, o.Width) &&
		sameFloat(r.Height, o.Height) &&
		r.LineBreak == o.LineBreak &&
		sameFloat(r.SyncFontSize, o.SyncFontSize)
}

func sameFloat(a, b float64) bool { return math.Float64bits(a) == math.Float64bits(b) }

// Result 保存适配结果。Cache 返回的是副本，调用方修改它不会影响缓存。
type Result struct {
	FontSize float64 `json:"fontSize"`
	// FittedFontSize is the size the search settled on, or -1 when it equals
	// the requested size.
	FittedFontSize float64       `json:"fittedFontSize"`
	Lines          int           `json:"lines"`
	Size           Size          `json:"size"`
	Text           richtext.Text `json:"text"`
	Truncated      bool          `json:"truncated"`
	EllipsisAt     int           `json:"ellipsisAt"` // 省略号的 rune 偏移，-1 表示没有
	SingleLine     bool          `json:"singleLine,omitempty"`
	Ellipsize      Ellipsize     `json:"ellipsize,omitempty"`
	MaxLines       int           `json:"maxLines,omitempty"` // 原生行数上限，0 表示不限
	LineBoxes      []LineMetrics `json:"lineBoxes,omitempty"`
}

func (r Result) clone() Result {
	r.Text = r.Text.Clone()
	r.LineBoxes = append([]LineMetrics(nil), r.LineBoxes...)
	return r
}

// LineMetrics describes one laid out line. Start/End are rune offsets into
// the measured text; Bottom is measured from the top of the block.
type LineMetrics struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Width  float64 `json:"width"`
	Bottom float64 `json:"bottom"`
}

// Metrics is what an oracle reports for one layout.
type Metrics struct {
	Lines   []LineMetrics `json:"lines"`
	Ascent  float64       `json:"ascent"`
	Descent float64       `json:"descent"`
	Leading float64       `json:"leading"`
}

func (m Metrics) LineCount() int { return len(m.Lines) }

// LineHeight is the glyph box height of one line, without leading.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent }

// Width returns the widest line.
func (m Metrics) Width() float64 {
	w := 0.0
	for _, l := range m.Lines {
		w = math.Max(w, l.Width)
	}
	return w
}

// Height returns the bottom of the last line.
func (m Metrics) Height() float64 {
	if len(m.Lines) == 0 {
		return 0
	}
	return m.Lines[len(m.Lines)-1].Bottom
}

// Stack assigns Bottom to each line: line i ends at
// (i+1)*(ascent+descent) + i*leading.
func Stack(lines []LineMetrics, ascent, descent, leading float64) Metrics {
	ascent, descent, leading = math.Abs(ascent), math.Abs(descent), math.Max(leading, 0)
	lh := ascent + descent
	for i := range lines {
		lines[i].Bottom = float64(i+1)*lh + float64(i)*leading
	}
	return Metrics{Lines: lines, Ascent: ascent, Descent: descent, Leading: leading}
}
