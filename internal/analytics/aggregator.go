package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/kafka"
)

// maxLatencySamples bounds the window used for latency percentiles.
const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalLookups     int64            `json:"total_lookups"`
	Matched          int64            `json:"matched"`
	Unmatched        int64            `json:"unmatched"`
	ExactHits        int64            `json:"exact_hits"`
	CacheHits        int64            `json:"cache_hits"`
	CacheMisses      int64            `json:"cache_misses"`
	WordsAdded       int64            `json:"words_added"`
	AvgLatencyUs     float64          `json:"avg_latency_us"`
	P50LatencyUs     int64            `json:"p50_latency_us"`
	P95LatencyUs     int64            `json:"p95_latency_us"`
	P99LatencyUs     int64            `json:"p99_latency_us"`
	ByType           map[string]int64 `json:"by_type"`
	TopQueries       []QueryCount     `json:"top_queries"`
	TopUnknownWords  []QueryCount     `json:"top_unknown_words"`
	LookupsPerMinute float64          `json:"lookups_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running totals over consumed events.
type Aggregator struct {
	mu            sync.RWMutex
	totalLookups  int64
	matched       int64
	exactHits     int64
	cacheHits     int64
	cacheMisses   int64
	wordsAdded    int64
	byType        map[string]int64
	latencies     []int64
	next          int
	queryCounts   map[string]int64
	unknownCounts map[string]int64
	topN          int
	startTime     time.Time

	logger *slog.Logger
}

func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		byType:        make(map[string]int64),
		latencies:     make([]int64, 0, 1024),
		queryCounts:   make(map[string]int64),
		unknownCounts: make(map[string]int64),
		topN:          topN,
		startTime:     time.Now(),
		logger:        slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka handler feeding agg. Undecodable messages are
// logged and skipped so a bad producer cannot stall the consumer.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		env, err := kafka.DecodeJSON[envelope](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		switch env.Type {
		case EventWordsAdded:
			event, err := kafka.DecodeJSON[WordsEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode words event", "error", err)
				return nil
			}
			agg.RecordWords(event)
		case EventMatch, EventCheck, EventContains:
			event, err := kafka.DecodeJSON[LookupEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode lookup event", "error", err)
				return nil
			}
			agg.RecordLookup(event)
		default:
			agg.logger.Warn("unknown analytics event type", "type", env.Type)
		}
		return nil
	}
}

func (a *Aggregator) RecordLookup(event LookupEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalLookups++
	a.byType[string(event.Type)]++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	a.queryCounts[event.Query]++
	if event.Found {
		a.matched++
		if event.Type == EventMatch && event.MatchDistance == 0 {
			a.exactHits++
		}
	} else {
		a.unknownCounts[event.Query]++
	}

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.next] = event.LatencyUs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

func (a *Aggregator) RecordWords(event WordsEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wordsAdded += int64(event.Added)
}

// Restore seeds the counters from a saved snapshot. Only the top lists of
// the snapshot survive, and latency samples start empty.
func (a *Aggregator) Restore(snapshot AggregatedStats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalLookups += snapshot.TotalLookups
	a.matched += snapshot.Matched
	a.exactHits += snapshot.ExactHits
	a.cacheHits += snapshot.CacheHits
	a.cacheMisses += snapshot.CacheMisses
	a.wordsAdded += snapshot.WordsAdded
	for t, n := range snapshot.ByType {
		a.byType[t] += n
	}
	for _, q := range snapshot.TopQueries {
		a.queryCounts[q.Query] += q.Count
	}
	for _, q := range snapshot.TopUnknownWords {
		a.unknownCounts[q.Query] += q.Count
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalLookups: a.totalLookups,
		Matched:      a.matched,
		Unmatched:    a.totalLookups - a.matched,
		ExactHits:    a.exactHits,
		CacheHits:    a.cacheHits,
		CacheMisses:  a.cacheMisses,
		WordsAdded:   a.wordsAdded,
		ByType:       make(map[string]int64, len(a.byType)),
	}
	for t, n := range a.byType {
		stats.ByType[t] = n
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, a.topN)
	stats.TopUnknownWords = topN(a.unknownCounts, a.topN)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.LookupsPerMinute = float64(stats.TotalLookups) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n most frequent entries, ties broken alphabetically.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
