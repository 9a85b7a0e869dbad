package svg

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	Color       string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	// ValueFormat renders the label printed above each bar. Empty disables labels.
	ValueFormat func(float64) string
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// LabelEvery prints only every n-th x label; 0 or 1 prints all.
	LabelEvery int
}

// Defaults for the stockdesk charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 36.0
	DefaultTicks   = 5
)
