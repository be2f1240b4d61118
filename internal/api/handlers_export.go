package api

import (
	"fmt"
	"math"
	"net/http"

	"github.com/xuri/excelize/v2"
)

const (
	sheetYearMonth     = "DemandByYearMonth"
	sheetSeasonPrice   = "PriceBySeasonYear"
	sheetSeasonWeather = "WeatherBySeasonYear"
)

// handleExportXLSX writes the three aggregate views as worksheets of one
// workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := s.aggregatesWorkbook()
	if err != nil {
		s.log.Errorw("build workbook", "err", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="vicenergy-aggregates.xlsx"`)
	if _, err := f.WriteTo(w); err != nil {
		s.log.Warnw("write workbook", "err", err)
	}
}

func (s *Server) aggregatesWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetYearMonth); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	ym := make([][]any, 0, len(s.ds.YearMonth))
	for _, row := range s.ds.YearMonth {
		ym = append(ym, []any{row.Year, row.Month, cell(row.Demand)})
	}
	sp := make([][]any, 0, len(s.ds.SeasonPrice))
	for _, row := range s.ds.SeasonPrice {
		sp = append(sp, []any{string(row.Season), row.Year, cell(row.RRP), cell(row.Demand)})
	}
	sw := make([][]any, 0, len(s.ds.SeasonWeather))
	for _, row := range s.ds.SeasonWeather {
		sw = append(sw, []any{string(row.Season), row.Year, cell(row.Demand), cell(row.MaxTemperature), cell(row.MinTemperature)})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{sheetYearMonth, []string{"year", "month", "demand"}, ym},
		{sheetSeasonPrice, []string{"season", "year", "RRP", "demand"}, sp},
		{sheetSeasonWeather, []string{"season", "year", "demand", "max_temperature", "min_temperature"}, sw},
	}
	for i, sh := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(sh.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("new sheet %s: %w", sh.name, err)
			}
		}
		if err := writeSheet(f, sh.name, sh.headers, sh.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		ref, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, ref, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}
	for r, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}

// cell leaves missing values blank instead of writing NaN.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
