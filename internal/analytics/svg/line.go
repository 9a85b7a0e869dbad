package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a line chart for the given series and labels.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	f, err := newFrame(width, height, opts.Padding, series)
	if err != nil {
		return "", err
	}
	axisColor := orDefault(opts.AxisColor, "#52606d")
	stroke := orDefault(opts.StrokeColor, "#2f6fde")
	fill := orDefault(opts.FillColor, "rgba(47,111,222,0.12)")

	x := func(i int) float64 {
		if len(series) == 1 {
			return f.padding + f.plotW/2
		}
		return f.padding + float64(i)*f.plotW/float64(len(series)-1)
	}

	var path strings.Builder
	for i, v := range series {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, x(i), f.y(v))
	}
	d := strings.TrimSpace(path.String())

	var b strings.Builder
	f.open(&b, opts.Title, opts.Description, "Line chart", "Trend over time")
	f.grid(&b, opts.TickCount, axisColor, orDefault(opts.GridColor, "#d9e2ec"))

	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`,
		d, x(len(series)-1), f.y(0), x(0), f.y(0), fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round"></path>`, d, stroke)

	if opts.ShowDots {
		for i, v := range series {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="2.5" fill="%s"></circle>`, x(i), f.y(v), stroke)
		}
	}

	every := opts.LabelEvery
	if every < 1 {
		every = 1
	}
	for i, label := range labels {
		if i%every == 0 || i == len(labels)-1 {
			f.xLabel(&b, x(i), axisColor, label)
		}
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
