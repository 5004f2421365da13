// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/eventmatch/internal/adapters/catalog"
	"github.com/okian/eventmatch/internal/adapters/document"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/internal/domain/parsecache"
	"github.com/okian/eventmatch/internal/domain/recommend"
	"github.com/okian/eventmatch/internal/domain/resume"
	"github.com/okian/eventmatch/pkg/logger"
	"github.com/okian/eventmatch/pkg/metrics"
)

// Parse sources reported to metrics.
const (
	sourceText   = "text"
	sourceUpload = "upload"
)

// Recommendation strategies reported to metrics.
const (
	strategyContent = "content"
	strategyHybrid  = "hybrid"
)

// ResumeParser extracts structured data from résumé text.
type ResumeParser interface {
	Parse(ctx context.Context, text string) (model.ParsedResume, error)
}

// Service implements the API dependencies for résumé parsing and event recommendation.
type Service struct {
	mu sync.RWMutex

	// Core components
	parser ResumeParser
	engine recommend.Recommender
	store  catalog.Store
	cache  parsecache.Cache

	// Configuration
	catalogPath        string
	topN               int
	threshold          float64
	collaborativeScore float64
	entityExtraction   bool
	parseCacheSize     int

	// State
	started   bool
	startedAt time.Time

	// Counters reported by GetStats
	resumesParsed         atomic.Int64
	recommendationsServed atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalogPath sets the event catalog file. Empty keeps the sample events.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithTopN sets the default number of recommendations.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithSimilarityThreshold sets the score a content-based recommendation must exceed.
func WithSimilarityThreshold(t float64) Option {
	return func(s *Service) {
		s.threshold = t
	}
}

// WithCollaborativeScore sets the fixed score for category-history matches.
func WithCollaborativeScore(score float64) Option {
	return func(s *Service) {
		s.collaborativeScore = score
	}
}

// WithEntityExtraction toggles the entity pass of the résumé parser.
func WithEntityExtraction(enabled bool) Option {
	return func(s *Service) {
		s.entityExtraction = enabled
	}
}

// WithParseCacheSize bounds the parsed-résumé cache. Zero disables it.
func WithParseCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.parseCacheSize = size
		}
	}
}

// WithParser replaces the résumé parser built on Start.
func WithParser(p ResumeParser) Option {
	return func(s *Service) {
		s.parser = p
	}
}

// WithEngine replaces the recommendation engine built on Start.
func WithEngine(e recommend.Recommender) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithStore replaces the catalog loaded on Start.
func WithStore(store catalog.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		topN:               5,
		threshold:          0,
		collaborativeScore: 0.8,
		entityExtraction:   true,
		parseCacheSize:     1000,
		logger:             nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the catalog and builds the parser and engine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting eventmatch service...")

	if s.store == nil {
		store, err := catalog.Open(ctx, s.catalogPath)
		if err != nil {
			s.logger.Error(ctx, "catalog load failed", logger.String("path", s.catalogPath), logger.Error(err))
			return fmt.Errorf("load catalog: %w", err)
		}
		s.store = store
	}

	if s.parser == nil {
		opts := []resume.Option{}
		if !s.entityExtraction {
			opts = append(opts, resume.WithEntityRecognizer(nil))
		}
		s.parser = resume.NewParser(opts...)
	}

	if s.engine == nil {
		s.engine = recommend.NewEngine(
			recommend.WithTopN(s.topN),
			recommend.WithThreshold(s.threshold),
			recommend.WithCollaborativeScore(s.collaborativeScore),
		)
	}

	if s.cache == nil && s.parseCacheSize > 0 {
		s.cache = parsecache.NewInMemoryCache(parsecache.WithMaxSize(s.parseCacheSize))
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "eventmatch service started",
		logger.Int("catalogEvents", s.store.Count(ctx)),
		logger.Int("topN", s.topN),
		logger.Float64("threshold", s.threshold),
		logger.Bool("entityExtraction", s.entityExtraction),
		logger.Int("parseCacheSize", s.parseCacheSize),
	)

	return nil
}

// Stop marks the service as stopped. Subsequent calls fail with ErrNotInitialized.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "eventmatch service stopped")
}

// liveComponents is a consistent view of the live collaborators.
type liveComponents struct {
	parser ResumeParser
	engine recommend.Recommender
	store  catalog.Store
	cache  parsecache.Cache
}

// components returns the live collaborators or ErrNotInitialized.
func (s *Service) components() (liveComponents, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return liveComponents{}, model.ErrNotInitialized
	}
	return liveComponents{parser: s.parser, engine: s.engine, store: s.store, cache: s.cache}, nil
}

// ParseResume extracts skills, experience and education from résumé text.
func (s *Service) ParseResume(ctx context.Context, text string) (model.ParsedResume, error) {
	return s.parse(ctx, sourceText, text)
}

// ParseDocument extracts the text of an uploaded file and parses it.
func (s *Service) ParseDocument(ctx context.Context, contentType, filename string, data []byte) (model.ParsedResume, error) {
	if _, err := s.components(); err != nil {
		return model.ParsedResume{}, fmt.Errorf("resume parser: %w", err)
	}

	text, format, err := document.Extract(contentType, filename, data)
	if err != nil {
		metrics.RecordResumeParseError(sourceUpload)
		if errors.Is(err, document.ErrUnsupportedType) {
			return model.ParsedResume{}, fmt.Errorf("%w: %w", model.ErrUnsupportedMedia, err)
		}
		return model.ParsedResume{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	s.logger.Debug(ctx, "document extracted",
		logger.String("format", string(format)),
		logger.String("filename", filename),
		logger.Int("chars", len(text)),
	)
	return s.parse(ctx, sourceUpload, text)
}

func (s *Service) parse(ctx context.Context, source, text string) (model.ParsedResume, error) {
	c, err := s.components()
	if err != nil {
		return model.ParsedResume{}, fmt.Errorf("resume parser: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return model.ParsedResume{}, fmt.Errorf("%w: resume text is empty", model.ErrInvalidInput)
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, text); ok {
			metrics.RecordParseCache(true)
			return cached, nil
		}
		metrics.RecordParseCache(false)
	}

	start := time.Now()
	parsed, err := c.parser.Parse(ctx, text)
	if err != nil {
		metrics.RecordResumeParseError(source)
		s.logger.Error(ctx, "resume parse failed", logger.String("source", source), logger.Error(err))
		return model.ParsedResume{}, err
	}
	latency := time.Since(start)
	metrics.RecordResumeParsed(source, len(parsed.Skills), float64(latency.Milliseconds()))
	s.resumesParsed.Add(1)

	if c.cache != nil {
		c.cache.Put(ctx, text, parsed)
	}

	s.logger.Debug(ctx, "resume parsed",
		logger.String("source", source),
		logger.Int("skills", len(parsed.Skills)),
		logger.Int("years", parsed.Experience.Years),
		logger.Duration("latency", latency),
	)
	return parsed, nil
}

// knownAttended keeps the attended ids the catalog knows, once each.
// Unknown ids are skipped.
func (s *Service) knownAttended(ctx context.Context, store catalog.Store, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := store.Get(ctx, id); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				s.logger.Debug(ctx, "unknown attended event ignored", logger.String("event_id", id))
				continue
			}
			return nil, fmt.Errorf("lookup attended event %q: %w", id, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// Recommend ranks catalog events for the query. Attended events switch the
// ranking to the hybrid strategy.
func (s *Service) Recommend(ctx context.Context, q model.RecommendQuery) ([]model.Recommendation, error) {
	c, err := s.components()
	if err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}
	if len(q.Skills) == 0 {
		return nil, fmt.Errorf("%w: skills are required", model.ErrInvalidInput)
	}

	events, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	attended, err := s.knownAttended(ctx, c.store, q.AttendedEventIDs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	strategy := strategyContent
	var recs []model.Recommendation
	if len(attended) > 0 {
		strategy = strategyHybrid
		recs, err = c.engine.Hybrid(ctx, q.Skills, attended, events, q.Limit)
	} else {
		recs, err = c.engine.ContentBased(ctx, q.Skills, events, q.Limit)
	}
	if err != nil {
		s.logger.Error(ctx, "recommendation failed", logger.String("strategy", strategy), logger.Error(err))
		return nil, err
	}

	scores := make([]float64, len(recs))
	for i, r := range recs {
		scores[i] = r.SimilarityScore
	}
	metrics.RecordRecommendations(strategy, scores, float64(time.Since(start).Milliseconds()))
	s.recommendationsServed.Add(int64(len(recs)))

	s.logger.Debug(ctx, "recommendations ranked",
		logger.String("userID", q.UserID),
		logger.String("strategy", strategy),
		logger.Int("skills", len(q.Skills)),
		logger.Int("results", len(recs)),
	)
	return recs, nil
}

// Events returns the catalog.
func (s *Service) Events(ctx context.Context) ([]model.Event, error) {
	c, err := s.components()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c.store.List(ctx)
}

// PopularEvents ranks catalog events by registrations.
func (s *Service) PopularEvents(ctx context.Context, limit int) ([]model.Recommendation, error) {
	c, err := s.components()
	if err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}
	events, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	recs, err := c.engine.Popular(ctx, events, limit)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "popular events ranked", logger.Int("results", len(recs)))
	return recs, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":               s.started,
		"topN":                  s.topN,
		"similarityThreshold":   s.threshold,
		"entityExtraction":      s.entityExtraction,
		"resumesParsed":         s.resumesParsed.Load(),
		"recommendationsServed": s.recommendationsServed.Load(),
	}

	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["catalogEvents"] = s.store.Count(context.Background())
		if s.cache != nil {
			stats["parseCacheEntries"] = s.cache.Size()
		}
	}

	return stats
}
