package charts

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/models"
)

// BoxPlot is the static distribution of daily demand per month, one box
// trace per season. Quartiles are computed here so the page only receives
// the summary, not every record.
func BoxPlot(ds *dataset.Dataset) models.Figure {
	byMonth := make(map[int][]float64)
	for _, r := range ds.Records {
		byMonth[r.Month] = append(byMonth[r.Month], r.Demand)
	}

	var traces []models.Trace
	for _, season := range models.Seasons {
		trace := models.Trace{
			Type:   models.TraceBox,
			Name:   string(season),
			X:      []any{},
			Marker: &models.Marker{Color: season.Color()},
		}
		for _, m := range monthsOf(season) {
			b, ok := summarise(byMonth[m])
			if !ok {
				continue
			}
			trace.X = append(trace.X, m)
			trace.Q1 = append(trace.Q1, b.Q1)
			trace.Median = append(trace.Median, b.Median)
			trace.Q3 = append(trace.Q3, b.Q3)
			trace.LowerFence = append(trace.LowerFence, b.LowerFence)
			trace.UpperFence = append(trace.UpperFence, b.UpperFence)
		}
		if trace.Points() > 0 {
			traces = append(traces, trace)
		}
	}

	return models.Figure{
		Data: traces,
		Layout: models.Layout{
			XAxis:       models.Axis{Title: "month"},
			YAxis:       models.Axis{Title: "demand"},
			ShowLegend:  true,
			LegendTitle: "season",
			BoxMode:     "overlay",
			Height:      chartHeight,
		},
	}
}

// DrillDown is the line chart linked to the box plot. With no month
// selected it shows mean demand per month, one series per year; with month
// m selected it shows mean demand by year for m only.
func DrillDown(ds *dataset.Dataset, month int) models.Figure {
	if month == 0 {
		return demandByMonth(ds)
	}

	trace := models.Trace{
		Type: models.TraceScatter,
		Mode: models.ModeLines,
		X:    []any{},
		Y:    models.Values{},
	}
	for _, row := range ds.YearMonthFor(month) {
		trace.X = append(trace.X, row.Year)
		trace.Y = append(trace.Y, row.Demand)
	}

	return models.Figure{
		Data: []models.Trace{trace},
		Layout: models.Layout{
			Title:  fmt.Sprintf("Average Demand for Month %d", month),
			XAxis:  models.Axis{Title: "year"},
			YAxis:  models.Axis{Title: "demand"},
			Height: chartHeight,
		},
	}
}

func demandByMonth(ds *dataset.Dataset) models.Figure {
	byYear := make(map[int]*models.Trace)
	var years []int
	for _, row := range ds.YearMonth {
		tr, ok := byYear[row.Year]
		if !ok {
			tr = &models.Trace{
				Type: models.TraceScatter,
				Mode: models.ModeLines,
				Name: strconv.Itoa(row.Year),
			}
			byYear[row.Year] = tr
			years = append(years, row.Year)
		}
		tr.X = append(tr.X, row.Month)
		tr.Y = append(tr.Y, row.Demand)
	}
	sort.Ints(years)

	traces := make([]models.Trace, 0, len(years))
	for _, y := range years {
		traces = append(traces, *byYear[y])
	}

	return models.Figure{
		Data: traces,
		Layout: models.Layout{
			Title:       "Average Demand Over Time",
			XAxis:       models.Axis{Title: "month"},
			YAxis:       models.Axis{Title: "demand"},
			ShowLegend:  true,
			LegendTitle: "year",
			Height:      chartHeight,
		},
	}
}

func monthsOf(season models.Season) []int {
	var months []int
	for m := 1; m <= 12; m++ {
		if models.SeasonOf(m) == season {
			months = append(months, m)
		}
	}
	return months
}
