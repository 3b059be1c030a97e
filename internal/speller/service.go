package speller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/tracing"
)

// Persister durably records words added at runtime so the next load sees
// them.
type Persister interface {
	Store(ctx context.Context, words []string) error
}

// Options carries the optional collaborators of a Service. Any of them may
// be nil.
type Options struct {
	Cache     *cache.MatchCache
	Collector *analytics.Collector
	Persister Persister
	Metrics   *metrics.Metrics
}

// Service is the front-end facing API shared by the HTTP handler, the RPC
// server and the word-update consumer.
type Service struct {
	engine    *Engine
	cache     *cache.MatchCache
	collector *analytics.Collector
	persister Persister
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(engine *Engine, opts Options) *Service {
	return &Service{
		engine:    engine,
		cache:     opts.Cache,
		collector: opts.Collector,
		persister: opts.Persister,
		metrics:   opts.Metrics,
		logger:    slog.Default().With("component", "speller-service"),
	}
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// BestMatch finds the closest word within distance of word. A negative
// distance uses the engine default.
func (s *Service) BestMatch(ctx context.Context, word string, distance int) (proto.MatchResponse, error) {
	start := time.Now()
	ctx, span := tracing.StartChildSpan(ctx, "speller.best_match")
	defer span.End()

	distance = s.resolve(distance)
	span.SetAttr("distance", distance)

	var (
		entry    cache.Entry
		cacheHit bool
		err      error
	)
	compute := func() (cache.Entry, error) {
		m, found, err := s.engine.BestMatch(word, distance)
		return cache.Entry{Found: found, Match: m}, err
	}
	if s.cache != nil && s.validQuery(word, distance) {
		entry, cacheHit, err = s.cache.GetOrCompute(ctx, s.engine.Generation(), word, distance, compute)
		s.countCache(cacheHit)
	} else {
		entry, err = compute()
	}
	span.SetAttr("cache_hit", cacheHit)

	if err != nil {
		s.fail(ctx, "match", word, err)
		return proto.MatchResponse{}, err
	}

	resp := proto.MatchResponse{
		Query:    word,
		Found:    entry.Found,
		Distance: distance,
		CacheHit: cacheHit,
	}
	if entry.Found {
		resp.Word = entry.Match.Word
		resp.Distance = entry.Match.Distance
		resp.Count = entry.Match.Count
		if s.metrics != nil {
			s.metrics.MatchDistance.Observe(float64(entry.Match.Distance))
		}
	}
	span.SetAttr("found", entry.Found)

	latency := time.Since(start)
	s.observe("match", entry.Found, latency)
	s.track(ctx, analytics.LookupEvent{
		Type:          analytics.EventMatch,
		Query:         word,
		Distance:      distance,
		Found:         entry.Found,
		Word:          resp.Word,
		MatchDistance: resp.Distance,
		Count:         resp.Count,
		CacheHit:      cacheHit,
		LatencyUs:     latency.Microseconds(),
	})
	logger.FromContext(ctx).Debug("best match",
		"query", word,
		"found", entry.Found,
		"word", resp.Word,
		"cache_hit", cacheHit,
		"latency", latency,
	)
	return resp, nil
}

// HasMatches reports whether any word lies within distance of word.
func (s *Service) HasMatches(ctx context.Context, word string, distance int) (proto.CheckResponse, error) {
	return s.check(ctx, analytics.EventCheck, word, s.resolve(distance))
}

// Contains reports whether word is in the dictionary.
func (s *Service) Contains(ctx context.Context, word string) (proto.CheckResponse, error) {
	return s.check(ctx, analytics.EventContains, word, 0)
}

func (s *Service) check(ctx context.Context, kind analytics.EventType, word string, distance int) (proto.CheckResponse, error) {
	start := time.Now()
	ctx, span := tracing.StartChildSpan(ctx, "speller."+string(kind))
	defer span.End()

	found, err := s.engine.HasMatches(word, distance)
	if err != nil {
		s.fail(ctx, string(kind), word, err)
		return proto.CheckResponse{}, err
	}
	span.SetAttr("found", found)

	latency := time.Since(start)
	s.observe(string(kind), found, latency)
	s.track(ctx, analytics.LookupEvent{
		Type:      kind,
		Query:     word,
		Distance:  distance,
		Found:     found,
		LatencyUs: latency.Microseconds(),
	})
	return proto.CheckResponse{Query: word, Distance: distance, Match: found}, nil
}

// AddWords persists words, when a Persister is configured, and then indexes
// them. Nothing is stored or indexed if any word is rejected.
func (s *Service) AddWords(ctx context.Context, words []string, origin string) (proto.AddWordsResponse, error) {
	ctx, span := tracing.StartChildSpan(ctx, "speller.add_words")
	defer span.End()
	span.SetAttr("words", len(words))

	if err := s.engine.Validate(words); err != nil {
		s.reject(err)
		return proto.AddWordsResponse{}, err
	}
	if s.persister != nil && len(words) > 0 {
		if err := s.persister.Store(ctx, words); err != nil {
			return proto.AddWordsResponse{}, fmt.Errorf("%w: persisting words: %v", apperrors.ErrSourceUnavailable, err)
		}
	}
	added, err := s.engine.AddWords(words...)
	if err != nil {
		return proto.AddWordsResponse{}, err
	}
	total := s.engine.Stats().Words

	logger.FromContext(ctx).Info("words added",
		"submitted", len(words),
		"added", added,
		"total", total,
		"origin", origin,
	)
	if s.collector != nil && added > 0 {
		s.collector.TrackWords(analytics.WordsEvent{
			Type:      analytics.EventWordsAdded,
			Added:     added,
			Total:     total,
			Source:    origin,
			Timestamp: time.Now().UTC(),
		})
	}
	return proto.AddWordsResponse{Added: added, Total: total}, nil
}

func (s *Service) Stats() proto.StatsResponse {
	st := s.engine.Stats()
	resp := proto.StatsResponse{
		Words:         st.Words,
		Keys:          st.Keys,
		Postings:      st.Postings,
		MaxWordLength: st.MaxWordLength,
		Generation:    st.Generation,
		Source:        st.Source,
	}
	if !st.LoadedAt.IsZero() {
		resp.LoadedAt = st.LoadedAt.Unix()
	}
	return resp
}

// CacheEnabled reports whether a match cache is configured.
func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

func (s *Service) CacheStats() (hits, misses int64) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}

// InvalidateCache drops every cached match.
func (s *Service) InvalidateCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Invalidate(ctx)
}

// resolve turns a request distance into the one actually searched.
func (s *Service) resolve(distance int) int {
	distance = s.engine.ResolveDistance(distance)
	if distance < 0 {
		return dictionary.MaxDistance
	}
	return distance
}

// validQuery keeps rejected queries out of the cache key space.
func (s *Service) validQuery(word string, distance int) bool {
	return len(word) < dictionary.MaxWordLen && distance <= dictionary.MaxDistance
}

func (s *Service) fail(ctx context.Context, op, word string, err error) {
	s.reject(err)
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues(op, "error").Inc()
	}
	logger.FromContext(ctx).Debug("lookup rejected", "op", op, "length", len(word), "error", err)
}

func (s *Service) reject(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, apperrors.ErrWordTooLong):
		s.metrics.RejectedInputTotal.WithLabelValues("word_too_long").Inc()
	case errors.Is(err, apperrors.ErrInvalidDistance):
		s.metrics.RejectedInputTotal.WithLabelValues("invalid_distance").Inc()
	}
}

func (s *Service) observe(op string, found bool, latency time.Duration) {
	if s.metrics == nil {
		return
	}
	result := "not_found"
	if found {
		result = "found"
	}
	s.metrics.LookupsTotal.WithLabelValues(op, result).Inc()
	s.metrics.LookupLatency.WithLabelValues(op).Observe(latency.Seconds())
}

func (s *Service) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}
}

func (s *Service) track(ctx context.Context, event analytics.LookupEvent) {
	if s.collector == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = logger.RequestID(ctx)
	s.collector.Track(event)
}
