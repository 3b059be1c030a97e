// Package speller serves a fuzzy dictionary to concurrent callers. The
// Engine guards a dictionary.Dictionary with a read/write lock and stamps
// every change with a generation number; the Service layers the match
// cache, analytics and persistence on top.
package speller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/source"
	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/metrics"
)

// Stats is a dictionary.Stats snapshot plus load bookkeeping.
type Stats struct {
	dictionary.Stats
	Generation uint64    `json:"generation"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
}

type Engine struct {
	mu              sync.RWMutex
	dict            *dictionary.Dictionary
	source          string
	loadedAt        time.Time
	generation      atomic.Uint64
	defaultDistance int
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

// NewEngine returns an empty engine. Queries that pass a negative distance
// use defaultDistance, which itself may be negative for the maximum. m may
// be nil.
func NewEngine(defaultDistance int, m *metrics.Metrics) *Engine {
	return &Engine{
		dict:            dictionary.New(),
		defaultDistance: defaultDistance,
		metrics:         m,
		logger:          slog.Default().With("component", "speller-engine"),
	}
}

// Load reads the whole source and replaces the dictionary with it. The
// source is read and indexed without holding the lock; queries keep being
// answered from the previous dictionary until the swap.
func (e *Engine) Load(ctx context.Context, src source.Source) error {
	start := time.Now()
	words, err := src.Words(ctx)
	if err != nil {
		e.countLoad("error")
		return fmt.Errorf("%w: %s: %v", apperrors.ErrSourceUnavailable, src.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		e.countLoad("error")
		return err
	}

	next := dictionary.New()
	if err := next.Load(words); err != nil {
		e.countLoad("rejected")
		return fmt.Errorf("loading %s: %w", src.Name(), err)
	}

	e.mu.Lock()
	e.dict = next
	e.source = src.Name()
	e.loadedAt = time.Now().UTC()
	gen := e.generation.Add(1)
	stats := next.Stats()
	e.mu.Unlock()

	e.countLoad("ok")
	e.observe(stats)
	e.logger.Info("dictionary loaded",
		"source", src.Name(),
		"words", stats.Words,
		"postings", stats.Postings,
		"generation", gen,
		"duration", time.Since(start),
	)
	return nil
}

// LoadWords replaces the dictionary with a fixed list.
func (e *Engine) LoadWords(ctx context.Context, words []string) error {
	return e.Load(ctx, source.Static{List: words})
}

// Validate checks words without changing anything.
func (e *Engine) Validate(words []string) error {
	for i, w := range words {
		if len(w) >= dictionary.MaxWordLen {
			return fmt.Errorf("word %d: %w: length %d, must be below %d",
				i, apperrors.ErrWordTooLong, len(w), dictionary.MaxWordLen)
		}
	}
	return nil
}

// AddWords indexes words into the live dictionary and returns how many were
// new. The list is validated first, so a rejected list adds nothing. The
// generation only moves when something was added.
func (e *Engine) AddWords(words ...string) (int, error) {
	if err := e.Validate(words); err != nil {
		return 0, err
	}

	e.mu.Lock()
	added := 0
	for _, w := range words {
		ok, err := e.dict.AddWord(w)
		if err != nil {
			e.mu.Unlock()
			return added, err
		}
		if ok {
			added++
		}
	}
	if added > 0 {
		e.generation.Add(1)
	}
	stats := e.dict.Stats()
	e.mu.Unlock()

	if added > 0 {
		if e.metrics != nil {
			e.metrics.WordsAddedTotal.Add(float64(added))
		}
		e.observe(stats)
	}
	return added, nil
}

// ResolveDistance maps a negative request distance to the configured
// default.
func (e *Engine) ResolveDistance(d int) int {
	if d < 0 {
		return e.defaultDistance
	}
	return d
}

func (e *Engine) BestMatch(word string, maxDistance int) (dictionary.Match, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.BestMatch(word, e.ResolveDistance(maxDistance))
}

func (e *Engine) HasMatches(word string, maxDistance int) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.HasMatches(word, e.ResolveDistance(maxDistance))
}

func (e *Engine) Contains(word string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dict.Contains(word)
}

// Generation changes whenever the dictionary contents change.
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Stats:      e.dict.Stats(),
		Generation: e.generation.Load(),
		Source:     e.source,
		LoadedAt:   e.loadedAt,
	}
}

// Ping reports whether a dictionary has been loaded.
func (e *Engine) Ping(ctx context.Context) error {
	if e.generation.Load() == 0 {
		return apperrors.ErrDictionaryEmpty
	}
	return nil
}

func (e *Engine) countLoad(status string) {
	if e.metrics != nil {
		e.metrics.DictionaryLoadsTotal.WithLabelValues(status).Inc()
	}
}

func (e *Engine) observe(stats dictionary.Stats) {
	if e.metrics == nil {
		return
	}
	e.metrics.DictionaryWords.Set(float64(stats.Words))
	e.metrics.DictionaryPostings.Set(float64(stats.Postings))
}
