// Package tokens holds the design-token tables and snaps free-form numeric
// style values onto them.
package tokens

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
)

//go:embed design-tokens.json
var defaultTokensJSON []byte

// Category selects which allowed-value list a value is snapped against.
type Category int

const (
	Spacing Category = iota
	SectionPadding
	ItemSpacing
	Radius
	FontSize
)

func (c Category) String() string {
	switch c {
	case Spacing:
		return "spacing"
	case SectionPadding:
		return "sectionPadding"
	case ItemSpacing:
		return "itemSpacing"
	case Radius:
		return "radius"
	case FontSize:
		return "fontSize"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

type TypographyToken struct {
	FontFamily string  `json:"fontFamily"`
	FontStyle  string  `json:"fontStyle"`
	FontSize   float64 `json:"fontSize"`
	LineHeight float64 `json:"lineHeight"`
}

type GridToken struct {
	Viewport  float64 `json:"viewport"`
	Container float64 `json:"container"`
}

type Colors struct {
	Background string `json:"background"`
	SurfaceAlt string `json:"surfaceAlt"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

// Table is one full set of design tokens.
type Table struct {
	Spacing        []float64                  `json:"spacing"`
	SectionPadding []float64                  `json:"sectionPadding"`
	ItemSpacing    []float64                  `json:"itemSpacing"`
	Radii          map[string]float64         `json:"radii"`
	Typography     map[string]TypographyToken `json:"typography"`
	Colors         Colors                     `json:"colors"`
	Grid           map[string]GridToken       `json:"grid"`

	raw []byte
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded token table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTokensJSON)
		if err != nil {
			panic("tokens: embedded design tokens are invalid: " + err.Error())
		}
		defaultTable = t
	})
	return defaultTable
}

// Load reads a token table from a JSON file. An empty path yields Default().
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design tokens: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("failed to parse design tokens: %w", err)
	}
	for _, c := range []Category{Spacing, SectionPadding, ItemSpacing, Radius, FontSize} {
		if len(t.Values(c)) == 0 {
			return nil, fmt.Errorf("design tokens: %s has no allowed values", c)
		}
	}
	t.raw = append([]byte(nil), b...)
	return &t, nil
}

// JSON returns the token table as it was loaded, for embedding into prompts.
func (t *Table) JSON() []byte {
	if len(t.raw) > 0 {
		return t.raw
	}
	b, _ := json.MarshalIndent(t, "", "  ")
	return b
}

// Values returns the allowed values of a category in ascending order.
func (t *Table) Values(c Category) []float64 {
	var out []float64
	switch c {
	case Spacing:
		out = append(out, t.Spacing...)
	case SectionPadding:
		out = append(out, t.SectionPadding...)
	case ItemSpacing:
		out = append(out, t.ItemSpacing...)
	case Radius:
		for _, v := range t.Radii {
			out = append(out, v)
		}
	case FontSize:
		for _, ty := range t.Typography {
			out = append(out, ty.FontSize)
		}
	}
	sort.Float64s(out)
	return out
}

// Snap returns the allowed value of c nearest to v.
func (t *Table) Snap(v float64, c Category) float64 {
	return SnapTo(v, t.Values(c))
}

// SnapTo returns the member of options with the minimum absolute distance to
// v, preferring the smaller candidate on an exact tie. An empty list returns v.
func SnapTo(v float64, options []float64) float64 {
	if len(options) == 0 {
		return v
	}
	best := options[0]
	bestDiff := math.Abs(best - v)
	for _, candidate := range options[1:] {
		diff := math.Abs(candidate - v)
		if diff < bestDiff || (diff == bestDiff && candidate < best) {
			best, bestDiff = candidate, diff
		}
	}
	return best
}

// RadiusKey names the radius token nearest to v, "md" when none matches.
func (t *Table) RadiusKey(v float64) string {
	nearest := t.Snap(v, Radius)
	keys := sortedKeys(t.Radii)
	for _, k := range keys {
		if t.Radii[k] == nearest {
			return k
		}
	}
	return "md"
}

// TypographyKey names the typography style whose font size is nearest to v,
// "body" when none matches.
func (t *Table) TypographyKey(v float64) string {
	nearest := t.Snap(v, FontSize)
	keys := sortedKeys(t.Typography)
	for _, k := range keys {
		if t.Typography[k].FontSize == nearest {
			return k
		}
	}
	return "body"
}

// TypographyFor looks up a typography style, falling back to "body".
func (t *Table) TypographyFor(style string) TypographyToken {
	if ty, ok := t.Typography[style]; ok {
		return ty
	}
	return t.Typography["body"]
}

// GridFor returns the frame and container widths for a viewport kind.
func (t *Table) GridFor(viewport string) (GridToken, bool) {
	g, ok := t.Grid[viewport]
	return g, ok
}

// Snap snaps against the default table.
func Snap(v float64, c Category) float64 {
	return Default().Snap(v, c)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
