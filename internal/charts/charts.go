// Package charts turns the loaded dataset and a slice of the selection
// state into Plotly figure specifications. Every producer is a pure
// function of its arguments and recomputes the figure from scratch.
package charts

import (
	"fmt"
	"math"
	"time"

	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/models"
)

const (
	chartHeight = 500
	chartWidth  = 700
)

// TimeSeries plots variable v over the records dated within [start, end],
// both ends inclusive and compared by calendar day. An inverted or
// non-overlapping interval gives a trace with no points.
func TimeSeries(ds *dataset.Dataset, v models.Variable, start, end time.Time) models.Figure {
	start, end = day(start), day(end)

	trace := models.Trace{
		Type: models.TraceScatter,
		Mode: models.ModeLines,
		Name: string(v),
		X:    []any{},
		Y:    models.Values{},
	}
	for _, r := range ds.Records {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		trace.X = append(trace.X, r.Date.Format(models.DateLayout))
		trace.Y = append(trace.Y, v.Of(r))
	}

	return models.Figure{
		Data: []models.Trace{trace},
		Layout: models.Layout{
			Title:       "Line Chart",
			XAxis:       models.Axis{Title: "Date", Type: "date"},
			YAxis:       models.Axis{Title: string(v)},
			ShowLegend:  true,
			LegendTitle: "Variable",
			Height:      chartHeight,
		},
	}
}

// Correlation scatters demand against v over every record and puts the
// Pearson coefficient in the title.
func Correlation(ds *dataset.Dataset, v models.Variable) models.Figure {
	trace := models.Trace{
		Type: models.TraceScatter,
		Mode: models.ModeMarkers,
		X:    make([]any, 0, len(ds.Records)),
		Y:    make(models.Values, 0, len(ds.Records)),
	}
	xs := make([]float64, 0, len(ds.Records))
	for _, r := range ds.Records {
		x := models.VarDemand.Of(r)
		xs = append(xs, x)
		trace.X = append(trace.X, jsonNumber(x))
		trace.Y = append(trace.Y, v.Of(r))
	}

	r := Pearson(xs, trace.Y)
	return models.Figure{
		Data: []models.Trace{trace},
		Layout: models.Layout{
			Title:  fmt.Sprintf("Scatter Plot (%s vs %s) - Correlation: %s", models.VarDemand, v, FormatCorrelation(r)),
			XAxis:  models.Axis{Title: string(models.VarDemand)},
			YAxis:  models.Axis{Title: string(v)},
			Height: chartHeight,
		},
	}
}

// FormatCorrelation renders r to two decimals, or "nan" when undefined.
func FormatCorrelation(r float64) string {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", r)
}

// Placeholder is what a chart region shows when its producer failed.
func Placeholder(title, message string) models.Figure {
	return models.Figure{
		Data: []models.Trace{},
		Layout: models.Layout{
			Title:  title,
			Height: chartHeight,
			Annotations: []models.Annotation{{
				Text: message,
				XRef: "paper",
				YRef: "paper",
				X:    0.5,
				Y:    0.5,
			}},
		},
	}
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// jsonNumber keeps NaN out of []any payloads, which encoding/json rejects.
func jsonNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
