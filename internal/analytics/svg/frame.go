package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame holds the plotting area of a chart and maps values onto it.
type frame struct {
	width, height int
	padding       float64
	plotW, plotH  float64
	lo, hi        float64
}

func newFrame(width, height int, padding float64, values []float64) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	f := frame{
		width:   width,
		height:  height,
		padding: padding,
		plotW:   float64(width) - 2*padding,
		plotH:   float64(height) - 2*padding,
	}
	if f.plotW <= 0 || f.plotH <= 0 {
		return frame{}, fmt.Errorf("svg: viewport too small")
	}
	f.lo, f.hi = valueRange(values)
	return f, nil
}

// y converts a value to its vertical pixel position.
func (f frame) y(v float64) float64 {
	return f.padding + f.plotH - (v-f.lo)/(f.hi-f.lo)*f.plotH
}

func (f frame) bottom() float64 { return f.padding + f.plotH }

func (f frame) open(b *strings.Builder, title, desc, fallbackTitle, fallbackDesc string) {
	titleID := makeID(title, "title")
	descID := makeID(title, "desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(orDefault(title, fallbackTitle)))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(orDefault(desc, fallbackDesc)))
}

// grid draws horizontal guide lines with their value ticks and both axes.
func (f frame) grid(b *strings.Builder, ticks int, axisColor, gridColor string) {
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	for i := 0; i <= ticks; i++ {
		v := f.lo + (f.hi-f.lo)*float64(i)/float64(ticks)
		y := f.y(v)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="3,3" aria-hidden="true"></line>`,
			f.padding, y, f.padding+f.plotW, y, gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`,
			f.padding-6, y+3, axisColor, template.HTMLEscapeString(formatTick(v)))
	}
	fmt.Fprintf(b, `<g stroke="%s" aria-hidden="true">`, axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"></line>`, f.padding, f.padding, f.padding, f.bottom())
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"></line>`, f.padding, f.y(0), f.padding+f.plotW, f.y(0))
	b.WriteString(`</g>`)
}

func (f frame) xLabel(b *strings.Builder, x float64, color, label string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`,
		x, f.bottom()+14, color, template.HTMLEscapeString(label))
}

// valueRange always includes zero and never collapses to an empty range.
func valueRange(values []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.Abs(hi-lo) < 1e-9 {
		hi = lo + 1
	}
	return lo, hi
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case math.Abs(v-math.Round(v)) < 1e-9:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
