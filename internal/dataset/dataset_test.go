package dataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/lox/vicenergy/internal/ingest"
	"github.com/lox/vicenergy/internal/models"
	"github.com/lox/vicenergy/internal/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st := store.New(db, zap.NewNop().Sugar())
	require.NoError(t, st.Migrate())
	return st
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "energy.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const header = "date,demand,RRP,solar_exposure,rainfall,max_temperature,min_temperature,month,year\n"

// Three records: (Jan 2015, 100), (Jan 2016, 200), (Jun 2015, 50).
const threeRecords = header +
	"2015-01-05,100,20,25,0,30,15,1,2015\n" +
	"2016-01-05,200,30,26,0,35,16,1,2016\n" +
	"2015-06-05,50,40,8,3,12,2,6,2015\n"

func TestLoad_EndToEnd(t *testing.T) {
	st := setupStore(t)
	ds, err := Load(context.Background(), writeCSV(t, threeRecords), st, zap.NewNop().Sugar())
	require.NoError(t, err)

	require.Len(t, ds.Records, 3)
	require.Len(t, ds.YearMonth, 3)
	assert.Equal(t, models.Summer, models.SeasonOf(1))
	assert.Equal(t, models.Winter, models.SeasonOf(6))

	assert.Equal(t, time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC), ds.MinDate)
	assert.Equal(t, time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC), ds.MaxDate)
	assert.Equal(t, 2015, ds.MinYear)
	assert.Equal(t, 2016, ds.MaxYear)
	assert.Equal(t, []int{2015, 2016}, ds.Years())

	n, err := st.CountRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLoad_YearMonthMatchesRecordMeans(t *testing.T) {
	body := header +
		"2015-01-01,100,20,25,0,30,15,1,2015\n" +
		"2015-01-02,110,20,25,0,30,15,1,2015\n" +
		"2015-01-03,150,20,25,0,30,15,1,2015\n" +
		"2015-02-01,90,20,25,0,30,15,2,2015\n" +
		"2016-02-01,70,20,25,0,30,15,2,2016\n" +
		"2016-02-02,80,20,25,0,30,15,2,2016\n"
	ds, err := Load(context.Background(), writeCSV(t, body), setupStore(t), zap.NewNop().Sugar())
	require.NoError(t, err)

	type key struct{ year, month int }
	sums := map[key]float64{}
	counts := map[key]int{}
	for _, r := range ds.Records {
		k := key{r.Year, r.Month}
		sums[k] += r.Demand
		counts[k]++
	}

	require.Len(t, ds.YearMonth, len(counts))
	for _, row := range ds.YearMonth {
		k := key{row.Year, row.Month}
		assert.InDelta(t, sums[k]/float64(counts[k]), row.Demand, 1e-9, "%v", k)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), setupStore(t), zap.NewNop().Sugar())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MissingColumn(t *testing.T) {
	body := "date,demand,solar_exposure,rainfall,max_temperature,min_temperature\n2015-01-01,1,2,3,4,5\n"
	_, err := Load(context.Background(), writeCSV(t, body), setupStore(t), zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ingest.ErrMissingColumn)
}

func TestLoad_BadDate(t *testing.T) {
	body := header + "not-a-date,1,2,3,4,5,1,1,2015\n"
	_, err := Load(context.Background(), writeCSV(t, body), setupStore(t), zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ingest.ErrBadDate)
}

func TestFilters(t *testing.T) {
	ds := &Dataset{
		YearMonth: []models.YearMonthDemand{
			{Year: 2015, Month: 1, Demand: 1},
			{Year: 2015, Month: 2, Demand: 2},
			{Year: 2016, Month: 1, Demand: 3},
		},
		SeasonWeather: []models.SeasonTemperature{
			{Season: models.Autumn, Year: 2015},
			{Season: models.Autumn, Year: 2016},
			{Season: models.Summer, Year: 2016},
			{Season: models.Summer, Year: 2017},
		},
	}

	jan := ds.YearMonthFor(1)
	require.Len(t, jan, 2)
	assert.Equal(t, 2015, jan[0].Year)
	assert.Equal(t, 2016, jan[1].Year)
	assert.Empty(t, ds.YearMonthFor(7))

	only2016 := ds.SeasonWeatherBetween(2016, 2016)
	require.Len(t, only2016, 2)
	for _, row := range only2016 {
		assert.Equal(t, 2016, row.Year)
	}
	assert.Empty(t, ds.SeasonWeatherBetween(2017, 2016))
}
