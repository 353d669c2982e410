package analytics

import "time"

type EventType string

const (
	EventSuggest    EventType = "suggest"
	EventZeroResult EventType = "zero_result"
	EventIndex      EventType = "index"
	EventDelete     EventType = "delete"
)

// SuggestEvent records one suggest query.
type SuggestEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Limit     int       `json:"limit"`
	Returned  int       `json:"returned"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// IndexEvent records one index or delete mutation.
type IndexEvent struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	Term      string    `json:"term"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
