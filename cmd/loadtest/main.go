package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// loadtest drives the typeahead HTTP API with concurrent index and suggest
// traffic and prints a latency summary.

var seedTerms = []string{
	"san francisco",
	"sao paulo",
	"new york city",
	"munchen",
	"montreal",
	"mumbai",
	"melbourne",
	"madrid",
	"manchester",
	"marseille",
	"milano",
	"minneapolis",
	"santiago",
	"seattle",
	"singapore",
}

var queryPrefixes = []string{"m", "ma", "man", "s", "sa", "san", "mo", "mu", "ne", "mi"}

type stats struct {
	requests  atomic.Int64
	errors    atomic.Int64
	latencies []time.Duration
	mu        sync.Mutex
}

func (s *stats) record(d time.Duration, err error) {
	s.requests.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the typeahead service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	apiKey := flag.String("api-key", "", "api key (when auth is enabled)")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	if err := seed(ctx, client, *baseURL, *apiKey); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d terms, running %d workers for %s\n", len(seedTerms), *concurrency, *duration)

	s := &stats{latencies: make([]time.Duration, 0, 100000)}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *concurrency; i++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			for gctx.Err() == nil {
				q := queryPrefixes[rng.Intn(len(queryPrefixes))]
				reqStart := time.Now()
				err := suggestOnce(gctx, client, *baseURL, *apiKey, q)
				if gctx.Err() != nil {
					break
				}
				s.record(time.Since(reqStart), err)
			}
			return nil
		})
	}
	g.Wait()

	report(s, time.Since(start))
}

func seed(ctx context.Context, client *http.Client, baseURL, apiKey string) error {
	for i, term := range seedTerms {
		body, _ := json.Marshal(map[string]any{
			"term":     term,
			"id":       fmt.Sprintf("city-%d", i),
			"value":    map[string]string{"name": term},
			"priority": float64(len(seedTerms) - i),
		})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/index", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			req.Header.Set("X-API-Key", apiKey)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("index %q: status %d", term, resp.StatusCode)
		}
	}
	return nil
}

func suggestOnce(ctx context.Context, client *http.Client, baseURL, apiKey, query string) error {
	u := fmt.Sprintf("%s/api/v1/suggest?q=%s&limit=10", baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func report(s *stats, elapsed time.Duration) {
	total := s.requests.Load()
	errs := s.errors.Load()

	s.mu.Lock()
	lats := s.latencies
	s.mu.Unlock()
	sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })

	fmt.Println("=== Typeahead Load Test ===")
	fmt.Printf("duration:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("requests:    %d (%.0f/s)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("errors:      %d\n", errs)
	if len(lats) > 0 {
		fmt.Printf("latency p50: %s\n", percentile(lats, 0.50))
		fmt.Printf("latency p95: %s\n", percentile(lats, 0.95))
		fmt.Printf("latency p99: %s\n", percentile(lats, 0.99))
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
