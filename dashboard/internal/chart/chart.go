package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/pkg/types"
)

// Datum is one labelled value.
type Datum struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Color is a wedge's fill and stroke.
type Color struct {
	Fill   string `json:"fill"`
	Stroke string `json:"stroke"`
}

// Palette maps names to colours. Names missing from the table use Default
// for both fill and stroke.
type Palette struct {
	Colors  map[string]Color
	Default string
}

// DefaultPalette returns the built-in colours for the default labels.
func DefaultPalette() Palette {
	return FromConfig(config.Default().Chart)
}

// FromConfig builds a Palette from the chart section of the config.
// A colour entry with only a fill reuses it as the stroke.
func FromConfig(cfg config.ChartConfig) Palette {
	p := Palette{
		Colors:  make(map[string]Color, len(cfg.Colors)),
		Default: cfg.DefaultColor,
	}
	if p.Default == "" {
		p.Default = config.DefaultColor
	}
	for name, c := range cfg.Colors {
		col := Color{Fill: c.Fill, Stroke: c.Stroke}
		if col.Fill == "" {
			col.Fill = p.Default
		}
		if col.Stroke == "" {
			col.Stroke = col.Fill
		}
		p.Colors[name] = col
	}
	return p
}

// Lookup returns the colour for name.
func (p Palette) Lookup(name string) Color {
	if c, ok := p.Colors[name]; ok {
		return c
	}
	return Color{Fill: p.Default, Stroke: p.Default}
}

// Slice is one laid-out wedge. Angles are in radians, clockwise from
// twelve o'clock.
type Slice struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Fraction float64 `json:"fraction"`
	Percent  string  `json:"percent"`
	Color
	Start float64 `json:"-"`
	End   float64 `json:"-"`
}

// FromPair returns the chart data for a pair: labelA gets A, labelB gets B.
func FromPair(p types.ValuePair, labelA, labelB string) []Datum {
	return []Datum{
		{Name: labelA, Value: p.A},
		{Name: labelB, Value: p.B},
	}
}

// Layout assigns each datum its share of the circle. Negative values count
// as zero. When the total is zero there is nothing to draw and Layout
// returns nil.
func Layout(data []Datum, p Palette) []Slice {
	var total float64
	for _, d := range data {
		total += math.Max(d.Value, 0)
	}
	if total <= 0 {
		return nil
	}

	out := make([]Slice, 0, len(data))
	angle := 0.0
	for _, d := range data {
		v := math.Max(d.Value, 0)
		frac := v / total
		sweep := frac * 2 * math.Pi
		out = append(out, Slice{
			Name:     d.Name,
			Value:    d.Value,
			Fraction: frac,
			Percent:  FormatPercent(frac),
			Color:    p.Lookup(d.Name),
			Start:    angle,
			End:      angle + sweep,
		})
		angle += sweep
	}
	return out
}

// FormatPercent renders a fraction with one decimal, dropping a trailing
// ".0": 0.375 → "37.5%", 0.5 → "50%".
func FormatPercent(frac float64) string {
	s := strconv.FormatFloat(math.Round(frac*1000)/10, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "%"
}

// FormatValue renders a value without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Hex6 strips the alpha channel from a #rrggbbaa colour so terminals that
// only understand #rrggbb can use it. Other inputs are returned unchanged.
func Hex6(c string) string {
	if len(c) == 9 && c[0] == '#' {
		return c[:7]
	}
	return c
}
