// Package benchmark contains Go benchmarks for the normalizer, prefix
// derivation, and the indexer over the in-memory store, measuring throughput
// and allocation behaviour.
package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/store/memory"
)

// BenchmarkNormalizeASCII measures normalization of plain ASCII input.
func BenchmarkNormalizeASCII(b *testing.B) {
	n := index.NewNormalizer()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.Term("new york city transit authority")
	}
}

// BenchmarkNormalizeAccented measures normalization of accent-heavy input,
// which exercises the transliteration path.
func BenchmarkNormalizeAccented(b *testing.B) {
	n := index.NewNormalizer()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = n.Term("crème brûlée à la Zürichoise")
	}
}

// BenchmarkPrefixes measures prefix key derivation for a three-word term.
func BenchmarkPrefixes(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = index.Prefixes("new york city")
	}
}

// BenchmarkIndexerAdd measures full Add throughput against the memory store.
func BenchmarkIndexerAdd(b *testing.B) {
	ix := index.New(memory.New())
	ctx := context.Background()
	value := map[string]string{"name": "San Francisco", "country": "US"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("id-%d", i)
		if err := ix.Add(ctx, "san francisco", id, value, float64(i)); err != nil {
			b.Fatalf("Add: %v", err)
		}
	}
}

// BenchmarkIndexerSearch measures suggest latency over 10 000 indexed ids.
func BenchmarkIndexerSearch(b *testing.B) {
	ix := index.New(memory.New())
	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("id-%d", i)
		if err := ix.Add(ctx, "seattle", id, map[string]string{"name": id}, float64(i)); err != nil {
			b.Fatalf("Add: %v", err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ix.Search(ctx, "sea", 20); err != nil {
			b.Fatalf("Search: %v", err)
		}
	}
}

// BenchmarkIndexerSearchParallel measures concurrent suggest throughput.
func BenchmarkIndexerSearchParallel(b *testing.B) {
	ix := index.New(memory.New())
	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("id-%d", i)
		if err := ix.Add(ctx, "seattle", id, map[string]string{"name": id}, float64(i)); err != nil {
			b.Fatalf("Add: %v", err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := ix.Search(ctx, "sea", 20); err != nil {
				b.Fatalf("Search: %v", err)
			}
		}
	})
}
