package charts

import (
	"sort"
	"strconv"

	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/models"
)

// SeasonalFigures are the three linked charts of the seasonal analysis tab.
// They always come from the same filtered rows.
type SeasonalFigures struct {
	Demand         models.Figure `json:"demand"`
	MaxTemperature models.Figure `json:"max_temperature"`
	MinTemperature models.Figure `json:"min_temperature"`
}

// Seasonal filters the (season, year) view to y0 <= year <= y1 and plots
// mean demand, maximum temperature and minimum temperature against season,
// one series per year.
func Seasonal(ds *dataset.Dataset, y0, y1 int) SeasonalFigures {
	rows := ds.SeasonWeatherBetween(y0, y1)

	return SeasonalFigures{
		Demand: seasonalFigure(rows, "Average Demand by Season and Year", models.VarDemand,
			func(r models.SeasonTemperature) float64 { return r.Demand }),
		MaxTemperature: seasonalFigure(rows, "Maximum Temperature by Season and Year", models.VarMaxTemperature,
			func(r models.SeasonTemperature) float64 { return r.MaxTemperature }),
		MinTemperature: seasonalFigure(rows, "Minimum Temperature by Season and Year", models.VarMinTemperature,
			func(r models.SeasonTemperature) float64 { return r.MinTemperature }),
	}
}

func seasonalFigure(rows []models.SeasonTemperature, title string, v models.Variable, value func(models.SeasonTemperature) float64) models.Figure {
	byYear := make(map[int]*models.Trace)
	var years []int
	for _, row := range rows {
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
		tr.X = append(tr.X, string(row.Season))
		tr.Y = append(tr.Y, value(row))
	}
	sort.Ints(years)

	traces := make([]models.Trace, 0, len(years))
	for _, y := range years {
		traces = append(traces, *byYear[y])
	}

	return models.Figure{
		Data: traces,
		Layout: models.Layout{
			Title:       title,
			XAxis:       models.Axis{Title: "season"},
			YAxis:       models.Axis{Title: string(v)},
			ShowLegend:  true,
			LegendTitle: "year",
			Height:      chartHeight,
			Width:       chartWidth,
		},
	}
}
