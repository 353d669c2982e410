// Package handler exposes the typeahead HTTP API: index and delete
// mutations, prefix suggestions, and cache statistics.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/suggest"
	apperrors "github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/middleware"
)

// Handler serves the typeahead API.
type Handler struct {
	indexer      *index.Indexer
	cache        *suggest.Cache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil; the
// corresponding features are then skipped.
func New(indexer *index.Indexer, cache *suggest.Cache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxLimit int) *Handler {
	return &Handler{
		indexer:      indexer,
		cache:        cache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.WithComponent("api-handler"),
	}
}

type indexRequest struct {
	Term     string          `json:"term"`
	ID       string          `json:"id"`
	Value    json.RawMessage `json:"value"`
	Priority float64         `json:"priority"`
}

type deleteRequest struct {
	Term string `json:"term"`
	ID   string `json:"id"`
}

type suggestResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []index.Result `json:"results"`
}

// Index handles POST /api/v1/index.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var value any
	if len(req.Value) > 0 {
		value = req.Value
	}
	if err := h.indexer.Add(ctx, req.Term, req.ID, value, req.Priority); err != nil {
		h.observeOp("add", "error", start)
		h.handleError(w, log, "index failed", err)
		return
	}
	h.observeOp("add", "ok", start)

	log.Info("term indexed", "id", req.ID, "priority", req.Priority)
	h.track(analytics.IndexEvent{
		Type:      analytics.EventIndex,
		ID:        req.ID,
		Term:      req.Term,
		LatencyMs: time.Since(start).Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	})
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/index.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.indexer.Del(ctx, req.Term, req.ID); err != nil {
		h.observeOp("delete", "error", start)
		h.handleError(w, log, "delete failed", err)
		return
	}
	h.observeOp("delete", "ok", start)

	log.Info("term deleted", "id", req.ID)
	h.track(analytics.IndexEvent{
		Type:      analytics.EventDelete,
		ID:        req.ID,
		Term:      req.Term,
		LatencyMs: time.Since(start).Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	})
	w.WriteHeader(http.StatusNoContent)
}

// Suggest handles GET /api/v1/suggest.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxLimit {
			parsed = h.maxLimit
		}
		limit = parsed
	}

	var results []index.Result
	var err error
	cacheHit := false
	if h.cache != nil {
		results, cacheHit, err = h.cache.Suggest(ctx, query, limit)
	} else {
		results, err = h.indexer.Search(ctx, query, limit)
	}
	if err != nil {
		h.observeSuggest("error", cacheHit, start, 0)
		h.handleError(w, log, "suggest failed", err)
		return
	}

	resultType := "hit"
	if len(results) == 0 {
		resultType = "zero_result"
	}
	h.observeSuggest(resultType, cacheHit, start, len(results))

	log.Info("suggest completed",
		"query", query,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	eventType := analytics.EventSuggest
	if len(results) == 0 {
		eventType = analytics.EventZeroResult
	}
	h.track(analytics.SuggestEvent{
		Type:      eventType,
		Query:     query,
		Limit:     limit,
		Returned:  len(results),
		CacheHit:  cacheHit,
		LatencyMs: time.Since(start).Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	})

	h.writeJSON(w, http.StatusOK, suggestResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"enabled": true,
		"hits":    hits,
		"misses":  misses,
	})
}

func (h *Handler) handleError(w http.ResponseWriter, log *slog.Logger, msg string, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, "error", err)
	} else {
		log.Warn(msg, "error", err)
	}
	if errors.Is(err, apperrors.ErrInvalidArgument) {
		h.writeError(w, status, err.Error())
		return
	}
	h.writeError(w, status, msg)
}

func (h *Handler) observeOp(op, status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.IndexOpsTotal.WithLabelValues(op, status).Inc()
	h.metrics.IndexOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (h *Handler) observeSuggest(resultType string, cacheHit bool, start time.Time, count int) {
	if h.metrics == nil {
		return
	}
	h.metrics.SuggestQueriesTotal.WithLabelValues(resultType).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SuggestLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	if resultType != "error" {
		h.metrics.SuggestResultsCount.Observe(float64(count))
	}
}

func (h *Handler) track(event any) {
	if h.collector != nil {
		h.collector.Track(event)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("writing response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
