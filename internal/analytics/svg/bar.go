package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a single-series bar chart, one bar per label.
func Bars(width, height int, values []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: values length must match labels")
	}
	f, err := newFrame(width, height, opts.Padding, values)
	if err != nil {
		return "", err
	}
	axisColor := orDefault(opts.AxisColor, "#52606d")
	color := orDefault(opts.Color, "#2f6fde")

	var b strings.Builder
	f.open(&b, opts.Title, opts.Description, "Bar chart", "Values per category")
	f.grid(&b, opts.TickCount, axisColor, orDefault(opts.GridColor, "#d9e2ec"))

	slot := f.plotW / float64(len(labels))
	barW := slot * 0.6
	zero := f.y(0)
	for i, label := range labels {
		x := f.padding + float64(i)*slot + (slot-barW)/2
		top := f.y(values[i])
		y, h := math.Min(top, zero), math.Abs(zero-top)
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s"></rect>`,
			x, y, barW, h, color, template.HTMLEscapeString(label))
		if opts.ValueFormat != nil {
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`,
				x+barW/2, y-4, axisColor, template.HTMLEscapeString(opts.ValueFormat(values[i])))
		}
		f.xLabel(&b, x+barW/2, axisColor, label)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
