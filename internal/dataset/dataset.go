package dataset

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lox/vicenergy/internal/ingest"
	"github.com/lox/vicenergy/internal/metrics"
	"github.com/lox/vicenergy/internal/models"
	"github.com/lox/vicenergy/internal/store"
)

// Dataset is the immutable, process-wide view of the loaded energy data.
// Nothing in it is modified after Load returns, so it is shared by every
// request without locking.
type Dataset struct {
	Source  string
	Records []models.Record

	YearMonth     []models.YearMonthDemand
	SeasonPrice   []models.SeasonPriceDemand
	SeasonWeather []models.SeasonTemperature

	MinDate time.Time
	MaxDate time.Time
	MinYear int
	MaxYear int
}

// Load reads source, stores the rows in st and derives the aggregate views.
// Any error is fatal for the dashboard; there is no partial dataset.
func Load(ctx context.Context, source string, st *store.Store, log *zap.SugaredLogger) (*Dataset, error) {
	start := time.Now()

	rc, err := ingest.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recs, err := ingest.ParseCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	counts := ingest.FlagCounts(recs)
	for _, flag := range ingest.SortedFlags(counts) {
		log.Warnw("data quality flag", "flag", flag, "records", counts[flag])
	}

	if err := st.ReplaceRecords(ctx, source, recs); err != nil {
		return nil, fmt.Errorf("store records: %w", err)
	}

	ds, err := Build(ctx, source, recs, st)
	if err != nil {
		return nil, err
	}

	metrics.RecordsLoaded.Set(float64(len(recs)))
	log.Infow("dataset loaded",
		"source", source,
		"records", len(recs),
		"from", ds.MinDate.Format(models.DateLayout),
		"to", ds.MaxDate.Format(models.DateLayout),
		"year_months", len(ds.YearMonth),
		"season_years", len(ds.SeasonWeather),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return ds, nil
}

// Build derives the views for recs, which must already be in st.
func Build(ctx context.Context, source string, recs []models.Record, st *store.Store) (*Dataset, error) {
	ds := &Dataset{Source: source, Records: recs}

	var err error
	if ds.YearMonth, err = st.AverageDemandByYearMonth(ctx); err != nil {
		return nil, fmt.Errorf("year/month view: %w", err)
	}
	if ds.SeasonPrice, err = st.SeasonalPriceDemand(ctx); err != nil {
		return nil, fmt.Errorf("season price view: %w", err)
	}
	if ds.SeasonWeather, err = st.SeasonalTemperature(ctx); err != nil {
		return nil, fmt.Errorf("season temperature view: %w", err)
	}

	for i, r := range recs {
		if i == 0 || r.Date.Before(ds.MinDate) {
			ds.MinDate = r.Date
		}
		if i == 0 || r.Date.After(ds.MaxDate) {
			ds.MaxDate = r.Date
		}
		if i == 0 || r.Year < ds.MinYear {
			ds.MinYear = r.Year
		}
		if i == 0 || r.Year > ds.MaxYear {
			ds.MaxYear = r.Year
		}
	}
	return ds, nil
}

// YearMonthFor returns the (year, month) rows for month m in year order.
func (d *Dataset) YearMonthFor(month int) []models.YearMonthDemand {
	var out []models.YearMonthDemand
	for _, row := range d.YearMonth {
		if row.Month == month {
			out = append(out, row)
		}
	}
	return out
}

// SeasonWeatherBetween returns the (season, year) rows with y0 <= year <= y1.
func (d *Dataset) SeasonWeatherBetween(y0, y1 int) []models.SeasonTemperature {
	var out []models.SeasonTemperature
	for _, row := range d.SeasonWeather {
		if row.Year >= y0 && row.Year <= y1 {
			out = append(out, row)
		}
	}
	return out
}

// Years lists every year from MinYear to MaxYear.
func (d *Dataset) Years() []int {
	if len(d.Records) == 0 {
		return nil
	}
	years := make([]int, 0, d.MaxYear-d.MinYear+1)
	for y := d.MinYear; y <= d.MaxYear; y++ {
		years = append(years, y)
	}
	return years
}
