// Package analytics records what the speller is asked. Lookup events are
// batched onto a Kafka topic by the Collector and folded back into running
// totals by the Aggregator, which also tracks the queries nothing matched.
package analytics

import "time"

type EventType string

const (
	EventMatch      EventType = "match"
	EventCheck      EventType = "check"
	EventContains   EventType = "contains"
	EventWordsAdded EventType = "words_added"
)

// LookupEvent describes one dictionary query as seen by the HTTP or RPC
// front end.
type LookupEvent struct {
	Type          EventType `json:"type"`
	Query         string    `json:"query"`
	Distance      int       `json:"distance"`
	Found         bool      `json:"found"`
	Word          string    `json:"word,omitempty"`
	MatchDistance int       `json:"match_distance,omitempty"`
	Count         int       `json:"count,omitempty"`
	CacheHit      bool      `json:"cache_hit"`
	LatencyUs     int64     `json:"latency_us"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
}

// WordsEvent reports words added to a running dictionary.
type WordsEvent struct {
	Type      EventType `json:"type"`
	Added     int       `json:"added"`
	Total     int       `json:"total"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// envelope peeks at the type before decoding the full event.
type envelope struct {
	Type EventType `json:"type"`
}
