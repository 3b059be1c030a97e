// Command loadtest drives GET /api/v1/match with misspelled words and
// reports throughput, latency percentiles, match and cache-hit rates.
//
// Queries are built from a word list (-words, one per line) by applying one
// random edit to each word, so most of them exercise the fuzzy path.
//
// Usage:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -words words.txt -concurrency 20 -duration 1m
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller/source"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/proto"
)

var fallbackWords = []string{
	"dictionary", "distance", "deletion", "variant", "posting",
	"symmetric", "alignment", "substitution", "transposition", "insertion",
	"neighbour", "candidate", "threshold", "spelling", "correction",
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Distance    int
	Queries     []string
}

type Stats struct {
	total       atomic.Int64
	errors      atomic.Int64
	found       atomic.Int64
	cacheHits   atomic.Int64
	latencies   []time.Duration
	latenciesMu sync.Mutex
	statuses    map[int]int64
	statusesMu  sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies: make([]time.Duration, 0, 100000),
		statuses:  make(map[int]int64),
	}
}

// Record counts one request. resp is nil when the request failed or the
// body could not be decoded.
func (s *Stats) Record(latency time.Duration, status int, resp *proto.MatchResponse, err error) {
	s.total.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if status != http.StatusOK || resp == nil {
		s.errors.Add(1)
	} else {
		if resp.Found {
			s.found.Add(1)
		}
		if resp.CacheHit {
			s.cacheHits.Add(1)
		}
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, latency)
	s.latenciesMu.Unlock()

	s.statusesMu.Lock()
	s.statuses[status]++
	s.statusesMu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the speller service")
	wordsPath := flag.String("words", "", "word list to derive queries from; a small built-in list when empty")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	distance := flag.Int("d", -1, "distance to request; negative for the service default")
	seed := flag.Uint64("seed", 1, "seed for query mutations")
	flag.Parse()

	words := fallbackWords
	if *wordsPath != "" {
		loaded, err := source.File{Path: *wordsPath}.Words(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading words: %v\n", err)
			os.Exit(1)
		}
		if len(loaded) > 0 {
			words = loaded
		}
	}

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		Distance:    *distance,
		Queries:     buildQueries(words, rand.New(rand.NewPCG(*seed, *seed))),
	}

	fmt.Println("=== Speller Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d\n", len(cfg.Queries))
	fmt.Println()

	stats := runLoadTest(cfg)
	if !printReport(os.Stdout, stats, cfg.Duration) {
		os.Exit(1)
	}
}

// buildQueries applies one random byte edit to every word: a deletion, an
// insertion, a substitution or a swap of two neighbours.
func buildQueries(words []string, rng *rand.Rand) []string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	queries := make([]string, 0, len(words))
	for _, w := range words {
		b := []byte(w)
		if len(b) == 0 {
			queries = append(queries, w)
			continue
		}
		i := rng.IntN(len(b))
		switch rng.IntN(4) {
		case 0:
			b = append(b[:i], b[i+1:]...)
		case 1:
			b = append(b[:i], append([]byte{letters[rng.IntN(len(letters))]}, b[i:]...)...)
		case 2:
			b[i] = letters[rng.IntN(len(letters))]
		default:
			if i+1 < len(b) {
				b[i], b[i+1] = b[i+1], b[i]
			}
		}
		queries = append(queries, string(b))
	}
	return queries
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := workerID; ctx.Err() == nil; i++ {
				query := cfg.Queries[i%len(cfg.Queries)]
				target := fmt.Sprintf("%s/api/v1/match?w=%s&d=%d", cfg.BaseURL, url.QueryEscape(query), cfg.Distance)
				if cfg.Distance < 0 {
					target = fmt.Sprintf("%s/api/v1/match?w=%s", cfg.BaseURL, url.QueryEscape(query))
				}
				lookup(ctx, client, target, stats)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func lookup(ctx context.Context, client *http.Client, target string, stats *Stats) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		stats.Record(0, 0, nil, err)
		return
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			stats.Record(time.Since(start), 0, nil, err)
		}
		return
	}
	defer resp.Body.Close()

	var body proto.MatchResponse
	decoded := &body
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		decoded = nil
	}
	stats.Record(time.Since(start), resp.StatusCode, decoded, nil)
}

// printReport writes the summary and reports whether any request completed.
func printReport(out *os.File, stats *Stats, duration time.Duration) bool {
	total := stats.total.Load()
	errCount := stats.errors.Load()
	ok := total - errCount

	fmt.Fprintln(out, "=== Results ===")
	fmt.Fprintf(out, "Total Requests:  %d\n", total)
	fmt.Fprintf(out, "Successful:      %d\n", ok)
	fmt.Fprintf(out, "Errors:          %d\n", errCount)
	if total > 0 {
		fmt.Fprintf(out, "Error Rate:      %.2f%%\n", float64(errCount)/float64(total)*100)
		fmt.Fprintf(out, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}
	if ok > 0 {
		fmt.Fprintf(out, "Match Rate:      %.2f%%\n", float64(stats.found.Load())/float64(ok)*100)
		fmt.Fprintf(out, "Cache Hit Rate:  %.2f%%\n", float64(stats.cacheHits.Load())/float64(ok)*100)
	}

	stats.latenciesMu.Lock()
	latencies := append([]time.Duration(nil), stats.latencies...)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "=== Latency ===")
		fmt.Fprintf(out, "Min:    %s\n", latencies[0])
		fmt.Fprintf(out, "Avg:    %s\n", sum/time.Duration(len(latencies)))
		fmt.Fprintf(out, "P50:    %s\n", percentile(latencies, 50))
		fmt.Fprintf(out, "P90:    %s\n", percentile(latencies, 90))
		fmt.Fprintf(out, "P99:    %s\n", percentile(latencies, 99))
		fmt.Fprintf(out, "Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Status Codes ===")
	stats.statusesMu.Lock()
	codes := make([]int, 0, len(stats.statuses))
	for code := range stats.statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(out, "  %d: %d\n", code, stats.statuses[code])
	}
	stats.statusesMu.Unlock()

	if total == 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "WARNING: No requests completed. Is the service running?")
		return false
	}
	return true
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
