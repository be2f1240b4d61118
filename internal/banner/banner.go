// Package banner provides the intro image shown on the dashboard's first
// tab and the social card derived from it.
package banner

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lox/vicenergy/internal/httputil"
	"github.com/lox/vicenergy/internal/metrics"
	"github.com/lox/vicenergy/internal/render"
)

const (
	keyIntro     = "intro"
	keyGenerated = "generated"

	fetchTimeout    = 20 * time.Second
	generateTimeout = 90 * time.Second
)

// Image sources, also used as the metric label.
const (
	SourceCache       = "cache"
	SourceRemote      = "remote"
	SourceGenerated   = "generated"
	SourceStale       = "stale"
	SourcePlaceholder = "placeholder"
)

type Config struct {
	Dir       string
	URL       string
	MaxAge    time.Duration
	Generator *Generator
	Client    *http.Client
}

// Service resolves the intro image: the configured URL first, then an AI
// generated image, then any previously cached image, then a drawn
// placeholder. Resolution is serialised so concurrent first visits share
// one fetch.
type Service struct {
	cache  *Cache
	gen    *Generator
	client *http.Client
	url    string
	log    *zap.SugaredLogger

	mu sync.Mutex
}

func New(cfg Config, log *zap.SugaredLogger) *Service {
	client := cfg.Client
	if client == nil {
		client = httputil.NewClient()
	}
	return &Service{
		cache:  NewCache(cfg.Dir, cfg.MaxAge, log),
		gen:    cfg.Generator,
		client: client,
		url:    cfg.URL,
		log:    log,
	}
}

// Intro returns the intro image bytes and where they came from. It never
// fails; the worst case is a placeholder.
func (s *Service) Intro(ctx context.Context) ([]byte, string) {
	data, source := s.resolve(ctx)
	metrics.BannerSource.WithLabelValues(source).Inc()
	return data, source
}

func (s *Service) resolve(ctx context.Context) ([]byte, string) {
	if data, ok := s.cache.Get(keyIntro); ok {
		return data, SourceCache
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have filled the cache while we waited.
	if data, ok := s.cache.Get(keyIntro); ok {
		return data, SourceCache
	}

	if s.url != "" {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		data, err := httputil.Fetch(fetchCtx, s.client, s.url)
		cancel()
		if err == nil && len(data) > 0 {
			s.store(keyIntro, data)
			return data, SourceRemote
		}
		s.log.Warnw("intro image fetch failed", "url", s.url, "err", err)
	}

	if s.gen != nil {
		if data, ok := s.cache.Get(keyGenerated); ok {
			return data, SourceCache
		}
		genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
		data, err := s.gen.Generate(genCtx, introPrompt)
		cancel()
		if err == nil {
			s.log.Infow("generated intro image", "bytes", len(data))
			s.store(keyGenerated, data)
			return data, SourceGenerated
		}
		s.log.Warnw("intro image generation failed", "err", err)
	}

	if data, ok := s.cache.GetAny(); ok {
		return data, SourceStale
	}

	data, err := render.Placeholder("Melbourne, Victoria", "Image unavailable", 1200, 500)
	if err != nil {
		s.log.Errorw("render banner placeholder", "err", err)
	}
	return data, SourcePlaceholder
}

func (s *Service) store(key string, data []byte) {
	if err := s.cache.Set(key, data); err != nil {
		s.log.Warnw("could not cache intro image", "key", key, "err", err)
	}
}
