// Package regression serves the regression playground: the model guide and
// the illustrative chart shown next to each model. Chart values are fixed
// demonstration data, not fitted results.
package regression

import (
	"math"
	"math/rand/v2"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// DefaultModel is shown when no model is chosen.
const DefaultModel = "linear"

// ChartKind names how a series is drawn.
type ChartKind string

const (
	Scatter ChartKind = "scatter"
	Line    ChartKind = "line"
	Bar     ChartKind = "bar"
	None    ChartKind = "none"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BarValue struct {
	Group string  `json:"group"`
	Count float64 `json:"count"`
}

// Chart is an illustrative series for one model.
type Chart struct {
	Kind   ChartKind  `json:"kind"`
	XLabel string     `json:"x_label,omitempty"`
	YLabel string     `json:"y_label,omitempty"`
	Points []Point    `json:"points,omitempty"`
	Bars   []BarValue `json:"bars,omitempty"`
}

// Playground pairs a model guide entry with its chart.
type Playground struct {
	Model catalog.RegressionModel `json:"model"`
	Chart Chart                   `json:"chart"`
}

// Lookup returns the playground for model id. An empty id selects
// DefaultModel.
func Lookup(cat *catalog.Catalog, id string) (Playground, bool) {
	if id == "" {
		id = DefaultModel
	}
	m, ok := cat.RegressionModel(id)
	if !ok {
		return Playground{}, false
	}
	return Playground{Model: m, Chart: Illustrate(id)}, true
}

// Illustrate returns the chart for a model id. The same id always yields
// the same series.
func Illustrate(id string) Chart {
	switch id {
	case "linear":
		return linearSeries()
	case "logistic":
		return logisticSeries()
	case "poisson":
		return Chart{
			Kind:   Bar,
			YLabel: "Event Count",
			Bars: []BarValue{
				{Group: "Control", Count: 3.2},
				{Group: "Treatment A", Count: 1.8},
				{Group: "Treatment B", Count: 0.9},
			},
		}
	default:
		return Chart{Kind: None}
	}
}

// noise returns a jitter source seeded per series.
func noise(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0x5eed))
}

// linearSeries is 50 points around y = 20 + 2.5x with jitter in [-10, 10).
func linearSeries() Chart {
	r := noise(1)
	pts := make([]Point, 50)
	for i := range pts {
		x := float64(i)
		pts[i] = Point{X: x, Y: 20 + 2.5*x + (r.Float64()-0.5)*20}
	}
	return Chart{Kind: Scatter, XLabel: "Predictor (X)", YLabel: "Outcome (Y)", Points: pts}
}

// logisticSeries is 20 points on a logistic curve centred at x = 10 with
// jitter of up to 0.1, clamped to [0, 1].
func logisticSeries() Chart {
	r := noise(2)
	pts := make([]Point, 20)
	for i := range pts {
		x := float64(i)
		p := 1 / (1 + math.Exp(-(x-10)/2))
		p = min(1, max(0, p+(r.Float64()-0.5)*0.2))
		pts[i] = Point{X: x, Y: p}
	}
	return Chart{Kind: Line, XLabel: "Predictor Value", YLabel: "Probability", Points: pts}
}
