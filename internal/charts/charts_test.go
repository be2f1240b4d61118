package charts

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(d string, demand, tmax, tmin float64) models.Record {
	t := date(d)
	return models.Record{
		Date:           t,
		Year:           t.Year(),
		Month:          int(t.Month()),
		Season:         models.SeasonOf(int(t.Month())),
		Demand:         demand,
		RRP:            demand / 10,
		SolarExposure:  tmax / 2,
		Rainfall:       1,
		MaxTemperature: tmax,
		MinTemperature: tmin,
	}
}

func testDataset() *dataset.Dataset {
	recs := []models.Record{
		record("2015-01-01", 100, 30, 15),
		record("2015-01-02", 120, 34, 17),
		record("2015-06-01", 150, 12, 2),
		record("2016-01-01", 200, 40, 20),
		record("2016-06-01", 180, 14, 3),
	}
	return &dataset.Dataset{
		Records: recs,
		YearMonth: []models.YearMonthDemand{
			{Year: 2015, Month: 1, Demand: 110},
			{Year: 2015, Month: 6, Demand: 150},
			{Year: 2016, Month: 1, Demand: 200},
			{Year: 2016, Month: 6, Demand: 180},
		},
		SeasonWeather: []models.SeasonTemperature{
			{Season: models.Summer, Year: 2015, Demand: 110, MaxTemperature: 34, MinTemperature: 15},
			{Season: models.Summer, Year: 2016, Demand: 200, MaxTemperature: 40, MinTemperature: 20},
			{Season: models.Winter, Year: 2015, Demand: 150, MaxTemperature: 12, MinTemperature: 2},
			{Season: models.Winter, Year: 2016, Demand: 180, MaxTemperature: 14, MinTemperature: 3},
		},
		MinDate: date("2015-01-01"),
		MaxDate: date("2016-06-01"),
		MinYear: 2015,
		MaxYear: 2016,
	}
}

func TestTimeSeries(t *testing.T) {
	ds := testDataset()
	fig := TimeSeries(ds, models.VarDemand, date("2015-01-02"), date("2016-01-01"))

	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Equal(t, models.ModeLines, tr.Mode)
	assert.Equal(t, "demand", tr.Name)
	assert.Equal(t, []any{"2015-01-02", "2015-06-01", "2016-01-01"}, tr.X)
	assert.Equal(t, models.Values{120, 150, 200}, tr.Y)
	assert.Equal(t, "Line Chart", fig.Layout.Title)
	assert.Equal(t, "demand", fig.Layout.YAxis.Title)
}

func TestTimeSeries_ClosedIntervalIgnoresTimeOfDay(t *testing.T) {
	ds := testDataset()
	end := date("2015-01-02").Add(3 * time.Hour)
	fig := TimeSeries(ds, models.VarRRP, date("2015-01-01"), end)
	assert.Equal(t, 2, fig.Data[0].Points())
	assert.Equal(t, models.Values{10, 12}, fig.Data[0].Y)
}

func TestTimeSeries_EmptyInterval(t *testing.T) {
	ds := testDataset()

	inverted := TimeSeries(ds, models.VarDemand, date("2016-01-01"), date("2015-01-01"))
	require.Len(t, inverted.Data, 1)
	assert.Zero(t, inverted.Data[0].Points())
	assert.True(t, inverted.Empty())

	outside := TimeSeries(ds, models.VarDemand, date("2020-01-01"), date("2020-12-31"))
	assert.True(t, outside.Empty())

	b, err := json.Marshal(outside)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"x":[]`)
}

func TestCorrelation_DemandWithItself(t *testing.T) {
	fig := Correlation(testDataset(), models.VarDemand)
	assert.Equal(t, "Scatter Plot (demand vs demand) - Correlation: 1.00", fig.Layout.Title)
}

func TestCorrelation_Title(t *testing.T) {
	fig := Correlation(testDataset(), models.VarMaxTemperature)
	require.Len(t, fig.Data, 1)
	assert.Equal(t, models.ModeMarkers, fig.Data[0].Mode)
	assert.Equal(t, 5, fig.Data[0].Points())
	assert.Contains(t, fig.Layout.Title, "Scatter Plot (demand vs max_temperature) - Correlation: ")
	assert.Equal(t, "demand", fig.Layout.XAxis.Title)
	assert.Equal(t, "max_temperature", fig.Layout.YAxis.Title)
}

func TestCorrelation_ZeroVariance(t *testing.T) {
	fig := Correlation(testDataset(), models.VarRainfall)
	assert.Equal(t, "Scatter Plot (demand vs rainfall) - Correlation: nan", fig.Layout.Title)

	_, err := json.Marshal(fig)
	assert.NoError(t, err)
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 1.0, Pearson(x, x), 1e-12)
	assert.InDelta(t, -1.0, Pearson(x, []float64{10, 8, 6, 4, 2}), 1e-12)

	assert.True(t, math.IsNaN(Pearson(x, []float64{3, 3, 3, 3, 3})))
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{2})))
	assert.True(t, math.IsNaN(Pearson(nil, nil)))

	withGaps := Pearson([]float64{1, 2, math.NaN(), 4}, []float64{2, 4, 100, 8})
	assert.InDelta(t, 1.0, withGaps, 1e-12)
}

func TestFormatCorrelation(t *testing.T) {
	assert.Equal(t, "0.57", FormatCorrelation(0.5678))
	assert.Equal(t, "-0.10", FormatCorrelation(-0.1))
	assert.Equal(t, "nan", FormatCorrelation(math.NaN()))
}

func TestBoxPlot(t *testing.T) {
	fig := BoxPlot(testDataset())

	require.Len(t, fig.Data, 2)
	summer, winter := fig.Data[0], fig.Data[1]
	assert.Equal(t, "Summer", summer.Name)
	assert.Equal(t, models.TraceBox, summer.Type)
	assert.Equal(t, []any{1}, summer.X)
	assert.Equal(t, "Winter", winter.Name)
	assert.Equal(t, []any{6}, winter.X)

	// January demand: 100, 120, 200.
	assert.Equal(t, 120.0, summer.Median[0])
	assert.LessOrEqual(t, summer.Q1[0], summer.Median[0])
	assert.GreaterOrEqual(t, summer.Q3[0], summer.Median[0])
	assert.Equal(t, 100.0, summer.LowerFence[0])
	assert.Equal(t, 200.0, summer.UpperFence[0])
}

func TestSummarise_Outlier(t *testing.T) {
	b, ok := summarise([]float64{10, 11, 12, 13, 14, 15, 16, 17, 1000, math.NaN()})
	require.True(t, ok)
	assert.Less(t, b.UpperFence, 1000.0, "outlier should sit beyond the whisker")
	assert.Equal(t, 10.0, b.LowerFence)

	_, ok = summarise([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestDrillDown_Unset(t *testing.T) {
	fig := DrillDown(testDataset(), 0)

	assert.Equal(t, "Average Demand Over Time", fig.Layout.Title)
	require.Len(t, fig.Data, 2)
	assert.Equal(t, "2015", fig.Data[0].Name)
	assert.Equal(t, []any{1, 6}, fig.Data[0].X)
	assert.Equal(t, models.Values{110, 150}, fig.Data[0].Y)
	assert.Equal(t, "2016", fig.Data[1].Name)
}

func TestDrillDown_Month(t *testing.T) {
	ds := testDataset()

	fig := DrillDown(ds, 6)
	assert.Equal(t, "Average Demand for Month 6", fig.Layout.Title)
	require.Len(t, fig.Data, 1)
	assert.Equal(t, []any{2015, 2016}, fig.Data[0].X)
	assert.Equal(t, models.Values{150, 180}, fig.Data[0].Y)

	// A second click replaces the selection rather than adding to it.
	fig = DrillDown(ds, 1)
	assert.Equal(t, "Average Demand for Month 1", fig.Layout.Title)
	require.Len(t, fig.Data, 1)
	assert.Equal(t, models.Values{110, 200}, fig.Data[0].Y)

	empty := DrillDown(ds, 9)
	assert.True(t, empty.Empty())
}

func TestSeasonal_SingleYear(t *testing.T) {
	figs := Seasonal(testDataset(), 2016, 2016)

	for _, fig := range []models.Figure{figs.Demand, figs.MaxTemperature, figs.MinTemperature} {
		require.Len(t, fig.Data, 1)
		assert.Equal(t, "2016", fig.Data[0].Name)
		assert.Equal(t, []any{"Summer", "Winter"}, fig.Data[0].X)
		assert.LessOrEqual(t, fig.Data[0].Points(), 4)
		assert.Equal(t, 700, fig.Layout.Width)
	}
	assert.Equal(t, models.Values{200, 180}, figs.Demand.Data[0].Y)
	assert.Equal(t, models.Values{40, 14}, figs.MaxTemperature.Data[0].Y)
	assert.Equal(t, models.Values{20, 3}, figs.MinTemperature.Data[0].Y)
	assert.Equal(t, "Maximum Temperature by Season and Year", figs.MaxTemperature.Layout.Title)
}

func TestSeasonal_FullRange(t *testing.T) {
	figs := Seasonal(testDataset(), 2015, 2016)
	require.Len(t, figs.Demand.Data, 2)
	assert.Equal(t, "2015", figs.Demand.Data[0].Name)
	assert.Equal(t, "2016", figs.Demand.Data[1].Name)
}

func TestSeasonal_EmptyRange(t *testing.T) {
	figs := Seasonal(testDataset(), 2019, 2020)
	assert.True(t, figs.Demand.Empty())
	assert.True(t, figs.MinTemperature.Empty())
}

func TestPlaceholder(t *testing.T) {
	fig := Placeholder("Line Chart", "Chart unavailable")
	assert.True(t, fig.Empty())
	require.Len(t, fig.Layout.Annotations, 1)
	assert.Equal(t, "Chart unavailable", fig.Layout.Annotations[0].Text)
}
