package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lox/vicenergy/internal/banner"
	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/layout"
	"github.com/lox/vicenergy/internal/session"
	"github.com/lox/vicenergy/internal/store"
)

const sessionCookie = "vicenergy_session"

type Options struct {
	Store    *store.Store
	Dataset  *dataset.Dataset
	Page     *layout.Page
	Sessions *session.Manager
	Banner   *banner.Service
	Port     string
	Log      *zap.SugaredLogger
}

type Server struct {
	store    *store.Store
	ds       *dataset.Dataset
	page     *layout.Page
	sessions *session.Manager
	banner   *banner.Service
	cards    *banner.CardCache
	port     string
	tmpl     *template.Template
	log      *zap.SugaredLogger
}

func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		store:    opts.Store,
		ds:       opts.Dataset,
		page:     opts.Page,
		sessions: opts.Sessions,
		banner:   opts.Banner,
		cards:    banner.NewCardCache(time.Hour),
		port:     opts.Port,
		tmpl:     newTemplates(),
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/figures/line", s.handleLineFigure)
	mux.HandleFunc("GET /api/figures/scatter", s.handleScatterFigure)
	mux.HandleFunc("GET /api/figures/boxplot", s.handleBoxPlotFigure)
	mux.HandleFunc("GET /api/figures/drilldown", s.handleDrillDownFigure)
	mux.HandleFunc("GET /api/figures/seasonal", s.handleSeasonalFigures)
	mux.HandleFunc("GET /api/selection", s.handleSelection)
	mux.HandleFunc("POST /api/selection/click", s.handleClick)
	mux.HandleFunc("POST /api/selection/reset", s.handleReset)

	mux.HandleFunc("GET /charts/{file}", s.handleChartPNG)
	mux.HandleFunc("GET /export/aggregates.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /intro-image", s.handleIntroImage)
	mux.HandleFunc("GET /og-image.png", s.handleSocialCard)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// session returns the caller's selection state, issuing a cookie when the
// request did not carry a live session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.State {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	newID, st := s.sessions.Get(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return st
}
