package analysis

import "time"

// Point is one chart data point.
type Point struct {
	Timestamp time.Time `json:"t"`
	Value     float64   `json:"v"`
}

// SeriesChart is a single-series chart with a horizontal threshold line.
type SeriesChart struct {
	Title     string  `json:"title"`
	Label     string  `json:"label"`
	Threshold float64 `json:"threshold"`
	Points    []Point `json:"points"`
}

// OverlayChart is the combined view: both series plus the simultaneous
// hours highlighted as markers on the CHW trace.
type OverlayChart struct {
	Title      string  `json:"title"`
	Threshold  float64 `json:"threshold"`
	CHW        []Point `json:"chw"`
	MTHW       []Point `json:"mthw"`
	Highlights []Point `json:"highlights"`
}

// ChartData bundles the three chart datasets the UI renders.
type ChartData struct {
	CHW      SeriesChart  `json:"chw"`
	MTHW     SeriesChart  `json:"mthw"`
	Combined OverlayChart `json:"combined"`
}

// Charts derives the three chart datasets from an analysis result. An empty
// result produces empty point slices, not nil charts.
func Charts(res *Result) *ChartData {
	chwPoints := make([]Point, 0, len(res.Rows))
	mthwPoints := make([]Point, 0, len(res.Rows))
	for _, r := range res.Rows {
		chwPoints = append(chwPoints, Point{Timestamp: r.Timestamp, Value: r.CHW})
		mthwPoints = append(mthwPoints, Point{Timestamp: r.Timestamp, Value: r.MTHW})
	}

	highlights := make([]Point, 0, len(res.Simultaneous))
	for _, r := range res.Simultaneous {
		highlights = append(highlights, Point{Timestamp: r.Timestamp, Value: r.CHW})
	}

	return &ChartData{
		CHW: SeriesChart{
			Title:     res.Building + " — CHW Load",
			Label:     "CHW Load",
			Threshold: res.Threshold,
			Points:    chwPoints,
		},
		MTHW: SeriesChart{
			Title:     res.Building + " — MTHW Load",
			Label:     "MTHW Load",
			Threshold: res.Threshold,
			Points:    mthwPoints,
		},
		Combined: OverlayChart{
			Title:      res.Building + " — Simultaneous Heating + Cooling",
			Threshold:  res.Threshold,
			CHW:        chwPoints,
			MTHW:       mthwPoints,
			Highlights: highlights,
		},
	}
}
