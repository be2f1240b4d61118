package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lox/vicenergy/internal/models"
)

// Store keeps the loaded dataset in SQLite and answers the aggregate
// queries the dashboard views are built from.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func New(db *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log}
}

// ReplaceRecords swaps the records table contents for recs in one transaction.
func (s *Store) ReplaceRecords(ctx context.Context, source string, recs []models.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (date, year, month, season, demand, rrp, solar_exposure, rainfall, max_temperature, min_temperature)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx,
			r.Date.Format(models.DateLayout), r.Year, r.Month, string(r.Season),
			nullable(r.Demand), nullable(r.RRP), nullable(r.SolarExposure),
			nullable(r.Rainfall), nullable(r.MaxTemperature), nullable(r.MinTemperature),
		); err != nil {
			return fmt.Errorf("insert record %s: %w", r.Date.Format(models.DateLayout), err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO loads (source, row_count, loaded_at) VALUES (?, ?, ?)`,
		source, len(recs), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record load: %w", err)
	}

	return tx.Commit()
}

func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// AverageDemandByYearMonth returns mean demand per (year, month), ordered by key.
func (s *Store) AverageDemandByYearMonth(ctx context.Context) ([]models.YearMonthDemand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, AVG(demand)
		FROM records
		GROUP BY year, month
		ORDER BY year, month
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.YearMonthDemand
	for rows.Next() {
		var row models.YearMonthDemand
		var demand sql.NullFloat64
		if err := rows.Scan(&row.Year, &row.Month, &demand); err != nil {
			return nil, err
		}
		row.Demand = orNaN(demand)
		out = append(out, row)
	}
	return out, rows.Err()
}

// SeasonalPriceDemand returns mean RRP and demand per (season, year).
func (s *Store) SeasonalPriceDemand(ctx context.Context) ([]models.SeasonPriceDemand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT season, year, AVG(rrp), AVG(demand)
		FROM records
		GROUP BY season, year
		ORDER BY season, year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SeasonPriceDemand
	for rows.Next() {
		var row models.SeasonPriceDemand
		var season string
		var rrp, demand sql.NullFloat64
		if err := rows.Scan(&season, &row.Year, &rrp, &demand); err != nil {
			return nil, err
		}
		row.Season = models.Season(season)
		row.RRP = orNaN(rrp)
		row.Demand = orNaN(demand)
		out = append(out, row)
	}
	return out, rows.Err()
}

// SeasonalTemperature returns mean demand, the highest maximum temperature
// and the lowest minimum temperature per (season, year).
func (s *Store) SeasonalTemperature(ctx context.Context) ([]models.SeasonTemperature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT season, year, AVG(demand), MAX(max_temperature), MIN(min_temperature)
		FROM records
		GROUP BY season, year
		ORDER BY season, year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SeasonTemperature
	for rows.Next() {
		var row models.SeasonTemperature
		var season string
		var demand, tmax, tmin sql.NullFloat64
		if err := rows.Scan(&season, &row.Year, &demand, &tmax, &tmin); err != nil {
			return nil, err
		}
		row.Season = models.Season(season)
		row.Demand = orNaN(demand)
		row.MaxTemperature = orNaN(tmax)
		row.MinTemperature = orNaN(tmin)
		out = append(out, row)
	}
	return out, rows.Err()
}

// LastLoad returns the source and time of the most recent ReplaceRecords.
func (s *Store) LastLoad(ctx context.Context) (source string, loadedAt time.Time, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT source, loaded_at FROM loads ORDER BY id DESC LIMIT 1
	`).Scan(&source, &loadedAt)
	if err == sql.ErrNoRows {
		return "", time.Time{}, nil
	}
	return source, loadedAt, err
}

func nullable(f float64) sql.NullFloat64 {
	if math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func orNaN(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}
