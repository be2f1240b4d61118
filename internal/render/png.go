// Package render draws figures as PNG images for export and for clients
// without JavaScript.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lox/vicenergy/internal/models"
)

const (
	DefaultWidth  = 900
	DefaultHeight = 500
)

var errTooFewPoints = errors.New("not enough points to draw")

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorAlternateGray,
	chart.ColorBlack,
}

// PNG renders fig. When the figure cannot be drawn (no data, a single
// point, or a go-chart range error) it falls back to a placeholder image
// carrying the title, so callers always get an image back. The error is
// returned alongside so it can be logged.
func PNG(fig models.Figure, width, height int) ([]byte, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	data, err := renderChart(fig, width, height)
	if err == nil {
		return data, nil
	}

	msg := "No data for the current selection"
	if !errors.Is(err, errTooFewPoints) {
		msg = "Chart unavailable"
	}
	ph, phErr := Placeholder(fig.Layout.Title, msg, width, height)
	if phErr != nil {
		return nil, fmt.Errorf("render placeholder: %w", phErr)
	}
	return ph, err
}

func renderChart(fig models.Figure, width, height int) ([]byte, error) {
	categories := categoryIndex(fig)

	var series []chart.Series
	points := 0
	for i, tr := range fig.Data {
		col := palette[i%len(palette)]
		if tr.Marker != nil && tr.Marker.Color != "" {
			col = drawing.ColorFromHex(strings.TrimPrefix(tr.Marker.Color, "#"))
		}
		switch tr.Type {
		case models.TraceBox:
			s := boxSeries(tr, col)
			for _, ss := range s {
				points += len(ss.XValues)
				series = append(series, ss)
			}
		default:
			s, n := traceSeries(tr, col, categories)
			if n == 0 {
				continue
			}
			points += n
			series = append(series, s)
		}
	}
	if points < 2 {
		return nil, errTooFewPoints
	}

	ch := chart.Chart{
		Title:      fig.Layout.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: fig.Layout.XAxis.Title},
		YAxis:      chart.YAxis{Name: fig.Layout.YAxis.Title},
		Series:     series,
	}
	if len(categories) > 0 {
		ch.XAxis.Ticks = categoryTicks(categories)
	}
	if ts, ok := series[0].(chart.TimeSeries); ok {
		ch.XAxis.Ticks = dateTicks(ts.XValues)
	}
	if len(series) > 1 || fig.Layout.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", fig.Layout.Title, err)
	}
	return buf.Bytes(), nil
}

func lineStyle(tr models.Trace, col drawing.Color) chart.Style {
	if tr.Mode == models.ModeMarkers {
		return chart.Style{
			StrokeWidth: 0,
			DotWidth:    3,
			DotColor:    col,
		}
	}
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// traceSeries converts a line or marker trace, dropping points whose y is
// missing. Date strings become a time series, category strings map to
// their index in categories, numbers are used as is.
func traceSeries(tr models.Trace, col drawing.Color, categories map[string]int) (chart.Series, int) {
	style := lineStyle(tr, col)

	if isDateTrace(tr) {
		s := chart.TimeSeries{Name: tr.Name, Style: style}
		for i, x := range tr.X {
			t, _ := time.Parse(models.DateLayout, x.(string))
			if i >= len(tr.Y) || math.IsNaN(tr.Y[i]) {
				continue
			}
			s.XValues = append(s.XValues, t)
			s.YValues = append(s.YValues, tr.Y[i])
		}
		return s, len(s.XValues)
	}

	s := chart.ContinuousSeries{Name: tr.Name, Style: style}
	for i, x := range tr.X {
		if i >= len(tr.Y) || math.IsNaN(tr.Y[i]) {
			continue
		}
		xv, ok := numeric(x, categories)
		if !ok {
			continue
		}
		s.XValues = append(s.XValues, xv)
		s.YValues = append(s.YValues, tr.Y[i])
	}
	return s, len(s.XValues)
}

// boxSeries draws a box trace as its median with the quartiles either side.
func boxSeries(tr models.Trace, col drawing.Color) []chart.ContinuousSeries {
	median := chart.ContinuousSeries{
		Name:  tr.Name,
		Style: chart.Style{StrokeWidth: 0, DotWidth: 5, DotColor: col},
	}
	quartiles := chart.ContinuousSeries{
		Style: chart.Style{StrokeWidth: 0, DotWidth: 2, DotColor: col},
	}
	for i, x := range tr.X {
		xv, ok := numeric(x, nil)
		if !ok || i >= len(tr.Median) {
			continue
		}
		median.XValues = append(median.XValues, xv)
		median.YValues = append(median.YValues, tr.Median[i])
		quartiles.XValues = append(quartiles.XValues, xv, xv, xv, xv)
		quartiles.YValues = append(quartiles.YValues, tr.LowerFence[i], tr.Q1[i], tr.Q3[i], tr.UpperFence[i])
	}
	if len(median.XValues) == 0 {
		return nil
	}
	return []chart.ContinuousSeries{quartiles, median}
}

func isDateTrace(tr models.Trace) bool {
	if len(tr.X) == 0 {
		return false
	}
	s, ok := tr.X[0].(string)
	if !ok {
		return false
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func numeric(x any, categories map[string]int) (float64, bool) {
	switch v := x.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, !math.IsNaN(v)
	case string:
		idx, ok := categories[v]
		return float64(idx), ok
	}
	return 0, false
}

// categoryIndex assigns each non-date string x value its position in
// order of first appearance across the figure.
func categoryIndex(fig models.Figure) map[string]int {
	idx := make(map[string]int)
	for _, tr := range fig.Data {
		if isDateTrace(tr) {
			continue
		}
		for _, x := range tr.X {
			s, ok := x.(string)
			if !ok {
				continue
			}
			if _, seen := idx[s]; !seen {
				idx[s] = len(idx)
			}
		}
	}
	if len(idx) == 0 {
		return nil
	}
	return idx
}

func categoryTicks(categories map[string]int) []chart.Tick {
	ticks := make([]chart.Tick, len(categories))
	for label, i := range categories {
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	return ticks
}

// dateTicks labels the x axis by month, thinning to at most a dozen ticks.
func dateTicks(times []time.Time) []chart.Tick {
	if len(times) == 0 {
		return nil
	}
	minT, maxT := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(minT) {
			minT = t
		}
		if t.After(maxT) {
			maxT = t
		}
	}
	months := (maxT.Year()-minT.Year())*12 + int(maxT.Month()-minT.Month())
	step := months/12 + 1

	var ticks []chart.Tick
	start := time.Date(minT.Year(), minT.Month(), 1, 0, 0, 0, 0, time.UTC)
	for t := start; !t.After(maxT); t = t.AddDate(0, step, 0) {
		if t.Before(minT) {
			continue
		}
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: t.Format("2006-01")})
	}
	if len(ticks) < 2 {
		return nil
	}
	return ticks
}
