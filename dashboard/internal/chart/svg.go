package chart

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"
)

// DefaultSize is the default SVG width and height in pixels.
const DefaultSize = 620

// WriteSVG renders slices as a square SVG pie of the given size. Each wedge
// carries a percent label and a <title> tooltip with the exact value. An
// empty slice list renders an empty placeholder circle.
func WriteSVG(w io.Writer, slices []Slice, size int) error {
	if size <= 0 {
		size = DefaultSize
	}
	c := float64(size) / 2
	r := c * 0.95

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img">`, size, size, size, size)
	b.WriteString("\n")

	drawn := 0
	for _, s := range slices {
		if s.Fraction <= 0 {
			continue
		}
		drawn++
		b.WriteString(`<g class="wedge">`)
		fmt.Fprintf(&b, `<title>%s: %s</title>`, html.EscapeString(s.Name), FormatValue(s.Value))
		if s.Fraction >= 1 {
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s"/>`,
				num(c), num(c), num(r), html.EscapeString(s.Fill), html.EscapeString(s.Stroke))
		} else {
			x1, y1 := point(c, r, s.Start)
			x2, y2 := point(c, r, s.End)
			large := 0
			if s.End-s.Start > math.Pi {
				large = 1
			}
			fmt.Fprintf(&b, `<path d="M%s,%s L%s,%s A%s,%s 0 %d 1 %s,%s Z" fill="%s" stroke="%s"/>`,
				num(c), num(c), num(x1), num(y1), num(r), num(r), large, num(x2), num(y2),
				html.EscapeString(s.Fill), html.EscapeString(s.Stroke))
		}
		lx, ly := point(c, r*0.6, (s.Start+s.End)/2)
		if s.Fraction >= 1 {
			lx, ly = c, c
		}
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`,
			num(lx), num(ly), s.Percent)
		b.WriteString("</g>\n")
	}

	if drawn == 0 {
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="#cccccc" stroke-dasharray="8 6"/>`+"\n",
			num(c), num(c), num(r))
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// point returns the coordinates at angle a (clockwise from twelve o'clock)
// on a circle of radius r centred at (c, c).
func point(c, r, a float64) (float64, float64) {
	return c + r*math.Sin(a), c - r*math.Cos(a)
}

// num formats a coordinate with two decimals and no negative zero.
func num(f float64) string {
	f = math.Round(f*100) / 100
	if f == 0 {
		f = 0
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
