package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lox/vicenergy/internal/models"
)

var (
	ErrEmpty         = errors.New("no data rows")
	ErrMissingColumn = errors.New("missing column")
	ErrBadDate       = errors.New("unparseable date")
	ErrBadValue      = errors.New("invalid value")
)

const (
	colDate           = "date"
	colMonth          = "month"
	colYear           = "year"
	colDemand         = "demand"
	colRRP            = "rrp"
	colSolarExposure  = "solar_exposure"
	colRainfall       = "rainfall"
	colMaxTemperature = "max_temperature"
	colMinTemperature = "min_temperature"
)

var requiredColumns = []string{
	colDate, colDemand, colRRP, colSolarExposure, colRainfall, colMaxTemperature, colMinTemperature,
}

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"02/01/2006",
}

// ParseCSV reads the energy dataset. The header must name every required
// column (matched case-insensitively); month and year are taken from their
// own columns when present and from the date otherwise. Empty numeric cells
// load as NaN.
func ParseCSV(r io.Reader) ([]models.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	monthIdx, hasMonth := cols[colMonth]
	yearIdx, hasYear := cols[colYear]

	var recs []models.Record
	line := 1
	for {
		row, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(row[cols[colDate]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := models.Record{
			Date:  date,
			Month: int(date.Month()),
			Year:  date.Year(),
		}
		if hasMonth {
			if rec.Month, err = parseInt(row[monthIdx], colMonth); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if hasYear {
			if rec.Year, err = parseInt(row[yearIdx], colYear); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		rec.Season = models.SeasonOf(rec.Month)
		if rec.Season == "" {
			return nil, fmt.Errorf("line %d: %w: month %d", line, ErrBadValue, rec.Month)
		}

		fields := []struct {
			col string
			dst *float64
		}{
			{colDemand, &rec.Demand},
			{colRRP, &rec.RRP},
			{colSolarExposure, &rec.SolarExposure},
			{colRainfall, &rec.Rainfall},
			{colMaxTemperature, &rec.MaxTemperature},
			{colMinTemperature, &rec.MinTemperature},
		}
		for _, f := range fields {
			if *f.dst, err = parseFloat(row[cols[f.col]], f.col); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}

		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, ErrEmpty
	}
	return recs, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

func parseInt(s, col string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	// Columns written by a dataframe with missing values come out as "1.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s %q", ErrBadValue, col, s)
	}
	return int(f), nil
}

func parseFloat(s, col string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan":
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrBadValue, col, s)
	}
	return f, nil
}
