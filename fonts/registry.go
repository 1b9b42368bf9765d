package fonts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Built-in family names.
const (
	FamilyGo      = "Go"
	FamilyGoMono  = "Go Mono"
	FamilyLMRoman = "Latin Modern Roman"
	FamilyLMSans  = "Latin Modern Sans"
	FamilyLMMono  = "Latin Modern Mono"
	DefaultFamily = FamilyGo
)

// ErrNoRegular is returned when a family has variants but no regular face
// to fall back on.
var ErrNoRegular = errors.New("字体家族缺少常规字重")

// Variant is the bold/italic combination of a face.
type Variant uint8

const (
	Regular Variant = iota
	Bold
	Italic
	BoldItalic
)

// VariantOf combines the two flags.
func VariantOf(bold, italic bool) Variant {
	v := Regular
	if bold {
		v |= Bold
	}
	if italic {
		v |= Italic
	}
	return v
}

func (v Variant) IsBold() bool   { return v&Bold != 0 }
func (v Variant) IsItalic() bool { return v&Italic != 0 }

func (v Variant) String() string {
	switch v {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	}
	return "regular"
}

// Resource identifies the font file chosen for a family and variant.
type Resource struct {
	Family  string  `json:"family"`
	Variant Variant `json:"variant"`
	Src     string  `json:"src"`
	// Synthetic is set when the requested variant was missing and a plainer
	// face stands in; renderers may embolden or slant it.
	Synthetic bool `json:"synthetic,omitempty"`
	// Fallback is set when the requested family was unknown.
	Fallback bool `json:"fallback,omitempty"`
}

// Key identifies the resource in caches.
func (r Resource) Key() string { return r.Src }

// Registry maps family names and aliases to font sources and caches the
// loaded bytes for the life of the process. It is safe for concurrent use.
type Registry struct {
	baseDir string

	mu       sync.Mutex
	families map[string]map[Variant]string // 小写家族名 -> 变体 -> 来源
	names    map[string]string             // 小写家族名 -> 显示名
	aliases  map[string]string
	data     map[string][]byte
}

// NewRegistry returns a registry holding the built-in families. Relative
// font paths registered later resolve against baseDir.
func NewRegistry(baseDir string) *Registry {
	r := &Registry{
		baseDir:  baseDir,
		families: map[string]map[Variant]string{},
		names:    map[string]string{},
		aliases:  map[string]string{},
		data:     map[string][]byte{},
	}
	for _, f := range []struct {
		family string
		faces  [4]string
	}{
		{FamilyGo, [4]string{"go-regular", "go-bold", "go-italic", "go-bolditalic"}},
		{FamilyGoMono, [4]string{"go-mono", "go-mono-bold", "go-mono-italic", "go-mono-bolditalic"}},
		{FamilyLMRoman, [4]string{"lmroman10-regular", "lmroman10-bold", "lmroman10-italic", "lmroman10-bolditalic"}},
		{FamilyLMSans, [4]string{"lmsans10-regular", "lmsans10-bold", "lmsans10-oblique", ""}},
		{FamilyLMMono, [4]string{"lmmono10-regular", "", "lmmono10-italic", ""}},
	} {
		for v, name := range f.faces {
			if name != "" {
				r.Register(f.family, Variant(v), BuiltinPrefix+name)
			}
		}
	}
	for alias, family := range map[string]string{
		"sans-serif": FamilyGo,
		"sans":       FamilyGo,
		"system":     FamilyGo,
		"serif":      FamilyLMRoman,
		"monospace":  FamilyGoMono,
		"mono":       FamilyGoMono,
	} {
		r.Alias(alias, family)
	}
	return r
}

// Register adds or replaces the source of one variant of family.
func (r *Registry) Register(family string, v Variant, src string) {
	key := strings.ToLower(strings.TrimSpace(family))
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.families[key] == nil {
		r.families[key] = map[Variant]string{}
		r.names[key] = strings.TrimSpace(family)
	}
	r.families[key][v] = src
}

// Alias makes name resolve to family.
func (r *Registry) Alias(name, family string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[strings.ToLower(strings.TrimSpace(name))] = strings.ToLower(strings.TrimSpace(family))
}

// Families lists the registered family names.
func (r *Registry) Families() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve picks the font file for family in the requested variant. Aliases
// are followed; an unknown or empty family resolves to DefaultFamily. A
// missing variant degrades to bold, then italic, then regular.
func (r *Registry) Resolve(family string, bold, italic bool) (Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(family))
	if a, ok := r.aliases[key]; ok {
		key = a
	}
	fallback := false
	faces, ok := r.families[key]
	if !ok {
		fallback = key != ""
		key = strings.ToLower(DefaultFamily)
		faces = r.families[key]
	}

	want := VariantOf(bold, italic)
	for _, v := range []Variant{want, want &^ Italic, want &^ Bold, Regular} {
		if src, ok := faces[v]; ok {
			return Resource{
				Family:    r.names[key],
				Variant:   v,
				Src:       src,
				Synthetic: v != want,
				Fallback:  fallback,
			}, nil
		}
	}
	return Resource{}, fmt.Errorf("解析字体 %q: %w", family, ErrNoRegular)
}

// Load returns the bytes of res, reading each source once.
func (r *Registry) Load(res Resource) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if data, ok := r.data[res.Src]; ok {
		return data, nil
	}
	data, err := Load(res.Src, r.baseDir)
	if err != nil {
		return nil, err
	}
	r.data[res.Src] = data
	return data, nil
}
