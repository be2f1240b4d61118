package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lox/vicenergy/internal/banner"
	"github.com/lox/vicenergy/internal/layout"
	"github.com/lox/vicenergy/internal/metrics"
	"github.com/lox/vicenergy/internal/models"
	"github.com/lox/vicenergy/internal/render"
	"github.com/lox/vicenergy/internal/session"
)

// chartFigure returns the named chart for the given selection.
func (s *Server) chartFigure(name string, sel session.Selection) (models.Figure, bool) {
	switch name {
	case chartLine:
		return s.lineFigure(sel), true
	case chartScatter:
		return s.scatterFigure(sel), true
	case chartBoxPlot:
		return s.boxPlotFigure(), true
	case chartDrillDown:
		return s.drillDownFigure(sel), true
	case chartSeasonalDemand:
		return s.seasonalFigures(sel).Demand, true
	case chartSeasonalMax:
		return s.seasonalFigures(sel).MaxTemperature, true
	case chartSeasonalMin:
		return s.seasonalFigures(sel).MinTemperature, true
	}
	return models.Figure{}, false
}

// handleChartPNG serves /charts/{name}.png: the caller's current view of a
// chart drawn server side. Optional w and h set the image size.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	name, ok := strings.CutSuffix(file, ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}

	sel := s.session(w, r).Snapshot()
	fig, ok := s.chartFigure(name, sel)
	if !ok {
		http.NotFound(w, r)
		return
	}

	width, height := fig.Layout.Width, fig.Layout.Height
	for key, dst := range map[string]*int{"w": &width, "h": &height} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 100 || n > 4000 {
			badRequest(w, fmt.Errorf("invalid %s %q", key, raw))
			return
		}
		*dst = n
	}

	data, err := render.PNG(fig, width, height)
	if err != nil {
		s.log.Warnw("chart png fell back to placeholder", "chart", name, "err", err)
		metrics.ChartErrors.WithLabelValues(name).Inc()
	}
	if data == nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	metrics.FiguresRendered.WithLabelValues(name, "png").Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// handleIntroImage serves the banner on the introduction tab.
func (s *Server) handleIntroImage(w http.ResponseWriter, r *http.Request) {
	data, source := s.banner.Intro(r.Context())
	if len(data) == 0 {
		http.Error(w, "image unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("X-Image-Source", source)
	if source == banner.SourcePlaceholder {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	w.Write(data)
}

// handleSocialCard serves an Open Graph image: the banner with the page
// title and dataset span drawn over it.
func (s *Server) handleSocialCard(w http.ResponseWriter, r *http.Request) {
	if data, ok := s.cards.Get(); ok {
		s.servePNG(w, data)
		return
	}

	bannerImage, _ := s.banner.Intro(r.Context())
	card, err := banner.Card(bannerImage, banner.CardData{
		Title:    "Victoria Energy 2015-2020",
		Subtitle: fmt.Sprintf("%d daily records, %d to %d", len(s.ds.Records), s.ds.MinYear, s.ds.MaxYear),
		Footer:   layout.Footer,
	})
	if err != nil {
		s.log.Errorw("render social card", "err", err)
		card, err = render.Placeholder(layout.Title, "", banner.CardWidth, banner.CardHeight)
		if err != nil {
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
	} else {
		s.cards.Set(card)
	}
	s.servePNG(w, card)
}

func (s *Server) servePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
