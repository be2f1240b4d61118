package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lox/vicenergy/internal/charts"
	"github.com/lox/vicenergy/internal/metrics"
	"github.com/lox/vicenergy/internal/models"
	"github.com/lox/vicenergy/internal/session"
)

// Chart names used in metrics labels and PNG routes.
const (
	chartLine           = "line"
	chartScatter        = "scatter"
	chartBoxPlot        = "boxplot"
	chartDrillDown      = "drilldown"
	chartSeasonalDemand = "seasonal-demand"
	chartSeasonalMax    = "seasonal-max"
	chartSeasonalMin    = "seasonal-min"
	chartSeasonal       = "seasonal"
)

var dateLayouts = []string{models.DateLayout, "2006-01-02T15:04:05", time.RFC3339}

// produce runs fn, replacing a panic with a placeholder figure titled
// title so one broken chart never takes down the page.
func (s *Server) produce(chart, title string, fn func() models.Figure) (fig models.Figure) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("chart producer failed", "chart", chart, "panic", r)
			metrics.ChartErrors.WithLabelValues(chart).Inc()
			fig = charts.Placeholder(title, "Chart unavailable")
		}
		metrics.FigureLatency.WithLabelValues(chart).Observe(time.Since(start).Seconds())
		metrics.FiguresRendered.WithLabelValues(chart, "json").Inc()
	}()
	return fn()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func (s *Server) handleLineFigure(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)
	sel := st.Snapshot()
	q := r.URL.Query()

	v := sel.LineVariable
	if raw := q.Get("variable"); raw != "" {
		parsed, err := models.ParseVariable(raw, models.LineVariables)
		if err != nil {
			badRequest(w, err)
			return
		}
		v = parsed
	}
	start, end := sel.Start, sel.End
	if raw := q.Get("start"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			badRequest(w, err)
			return
		}
		start = t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			badRequest(w, err)
			return
		}
		end = t
	}

	sel = st.SetLine(v, start, end)
	writeJSON(w, s.lineFigure(sel))
}

func (s *Server) handleScatterFigure(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)
	sel := st.Snapshot()

	if raw := r.URL.Query().Get("variable"); raw != "" {
		v, err := models.ParseVariable(raw, models.ScatterVariables)
		if err != nil {
			badRequest(w, err)
			return
		}
		sel = st.SetScatter(v)
	}
	writeJSON(w, s.scatterFigure(sel))
}

func (s *Server) handleBoxPlotFigure(w http.ResponseWriter, r *http.Request) {
	s.session(w, r)
	writeJSON(w, s.boxPlotFigure())
}

func (s *Server) handleDrillDownFigure(w http.ResponseWriter, r *http.Request) {
	sel := s.session(w, r).Snapshot()
	writeJSON(w, s.drillDownFigure(sel))
}

// handleClick records a click on the box plot. The month comes from a form
// field or a JSON body {"month": n}.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)

	month, err := clickedMonth(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	sel, err := st.Click(month)
	if err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, s.drillDownFigure(sel))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sel := s.session(w, r).ClearClick()
	writeJSON(w, s.drillDownFigure(sel))
}

func clickedMonth(r *http.Request) (int, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body struct {
			Month *json.Number `json:"month"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return 0, fmt.Errorf("decode click: %w", err)
		}
		if body.Month == nil {
			return 0, errors.New("missing month")
		}
		return parseMonth(body.Month.String())
	}
	raw := r.FormValue("month")
	if raw == "" {
		return 0, errors.New("missing month")
	}
	return parseMonth(raw)
}

// parseMonth accepts "7" and "7.0", the latter being how chart libraries
// report a numeric x position.
func parseMonth(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: %q", session.ErrInvalidMonth, raw)
	}
	return int(f), nil
}

func (s *Server) handleSeasonalFigures(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)
	sel := st.Snapshot()
	q := r.URL.Query()

	from, to := sel.YearFrom, sel.YearTo
	if raw := q.Get("from"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, fmt.Errorf("invalid year %q", raw))
			return
		}
		from = n
	}
	if raw := q.Get("to"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, fmt.Errorf("invalid year %q", raw))
			return
		}
		to = n
	}

	sel = st.SetYears(from, to)
	writeJSON(w, s.seasonalFigures(sel))
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.session(w, r).Snapshot())
}

func (s *Server) lineFigure(sel session.Selection) models.Figure {
	return s.produce(chartLine, "Line Chart", func() models.Figure {
		return charts.TimeSeries(s.ds, sel.LineVariable, sel.Start, sel.End)
	})
}

func (s *Server) scatterFigure(sel session.Selection) models.Figure {
	return s.produce(chartScatter, "Scatter Plot", func() models.Figure {
		return charts.Correlation(s.ds, sel.ScatterVariable)
	})
}

func (s *Server) boxPlotFigure() models.Figure {
	return s.produce(chartBoxPlot, "Demand by Month and Season", func() models.Figure {
		return charts.BoxPlot(s.ds)
	})
}

func (s *Server) drillDownFigure(sel session.Selection) models.Figure {
	return s.produce(chartDrillDown, "Average Demand Over Time", func() models.Figure {
		return charts.DrillDown(s.ds, sel.ClickedMonth)
	})
}

// seasonalFigures produces the three linked charts together; a failure
// replaces all three with placeholders.
func (s *Server) seasonalFigures(sel session.Selection) charts.SeasonalFigures {
	var all charts.SeasonalFigures
	ok := false
	s.produce(chartSeasonal, "", func() models.Figure {
		all = charts.Seasonal(s.ds, sel.YearFrom, sel.YearTo)
		ok = true
		return models.Figure{}
	})
	if !ok {
		return charts.SeasonalFigures{
			Demand:         charts.Placeholder("Average Demand by Season and Year", "Chart unavailable"),
			MaxTemperature: charts.Placeholder("Maximum Temperature by Season and Year", "Chart unavailable"),
			MinTemperature: charts.Placeholder("Minimum Temperature by Season and Year", "Chart unavailable"),
		}
	}
	return all
}
