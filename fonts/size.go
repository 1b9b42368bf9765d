package fonts

import "strings"

// NamedSize 是平台约定的字号名称。
type NamedSize int

const (
	SizeDefault NamedSize = iota
	SizeMicro
	SizeSmall
	SizeMedium
	SizeLarge
)

var namedSizes = map[NamedSize]struct {
	name string
	pt   float64
}{
	SizeDefault: {"default", 17},
	SizeMicro:   {"micro", 12},
	SizeSmall:   {"small", 14},
	SizeMedium:  {"medium", 17},
	SizeLarge:   {"large", 22},
}

// Points returns the size in points.
func (n NamedSize) Points() float64 { return namedSizes[n].pt }

func (n NamedSize) String() string { return namedSizes[n].name }

// ParseNamedSize looks a size up by name, case-insensitively.
func ParseNamedSize(s string) (NamedSize, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for n, v := range namedSizes {
		if v.name == s {
			return n, true
		}
	}
	return SizeDefault, false
}
