package index_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/store/memory"
	apperrors "github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/errors"
)

type record struct {
	Name string `json:"name"`
}

func newTestIndexer() (*index.Indexer, *memory.Store) {
	st := memory.New()
	return index.New(st), st
}

func decodeRecord(t *testing.T, raw json.RawMessage) record {
	t.Helper()
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		t.Fatalf("unmarshaling result value: %v", err)
	}
	return r
}

func TestAddSearchRoundTrip(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	if err := ix.Add(ctx, "San Francisco", "sf", record{Name: "San Francisco"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Any prefix of either word matches, regardless of query casing or
	// surrounding whitespace.
	for _, q := range []string{"san", "SAN", "  San ", "fran", "francisco", "s"} {
		results, err := ix.Search(ctx, q, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(results) != 1 {
			t.Fatalf("Search(%q): got %d results, want 1", q, len(results))
		}
		if results[0].ID != "sf" {
			t.Errorf("Search(%q): id = %q, want %q", q, results[0].ID, "sf")
		}
		if got := decodeRecord(t, results[0].Value); got.Name != "San Francisco" {
			t.Errorf("Search(%q): value = %+v", q, got)
		}
	}
}

func TestSearchAccentInsensitive(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	if err := ix.Add(ctx, "München", "muc", record{Name: "München"}, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	results, err := ix.Search(ctx, "munch", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "muc" {
		t.Fatalf("accented term not found via ASCII query: %+v", results)
	}
}

func TestSearchOrdering(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	adds := []struct {
		id       string
		priority float64
	}{
		{"a", 3},
		{"b", 1},
		{"c", 2},
	}
	for _, a := range adds {
		if err := ix.Add(ctx, "term", a.id, record{Name: a.id}, a.priority); err != nil {
			t.Fatalf("Add(%s): %v", a.id, err)
		}
	}

	results, err := ix.Search(ctx, "term", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantOrder := []string{"a", "c", "b"}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range wantOrder {
		if results[i].ID != want {
			t.Errorf("results[%d].ID = %q, want %q", i, results[i].ID, want)
		}
	}
}

func TestAddIdempotent(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	if err := ix.Add(ctx, "cat", "c1", record{Name: "first"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Add(ctx, "cat", "c1", record{Name: "second"}, 9); err != nil {
		t.Fatalf("re-Add: %v", err)
	}

	results, err := ix.Search(ctx, "ca", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d entries after re-add, want 1", len(results))
	}
	if results[0].Score != 9 {
		t.Errorf("score = %v, want 9 (last write wins)", results[0].Score)
	}
	if got := decodeRecord(t, results[0].Value); got.Name != "second" {
		t.Errorf("value = %+v, want last write", got)
	}
}

func TestSearchLimit(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("id-%02d", i)
		if err := ix.Add(ctx, "prefix", id, record{Name: id}, float64(i)); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}

	results, err := ix.Search(ctx, "prefix", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	// The ten highest priorities are 29..20, descending.
	for i, r := range results {
		want := float64(29 - i)
		if r.Score != want {
			t.Errorf("results[%d].Score = %v, want %v", i, r.Score, want)
		}
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("id-%02d", i)
		if err := ix.Add(ctx, "word", id, record{Name: id}, float64(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	results, err := ix.Search(ctx, "word", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != index.DefaultSearchLimit {
		t.Fatalf("got %d results, want default limit %d", len(results), index.DefaultSearchLimit)
	}
}

func TestDelRemovesEntriesAndMetadata(t *testing.T) {
	ix, st := newTestIndexer()
	ctx := context.Background()

	if err := ix.Add(ctx, "dog", "d1", record{Name: "dog"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Del(ctx, "dog", "d1"); err != nil {
		t.Fatalf("Del: %v", err)
	}

	for _, q := range []string{"d", "do", "dog"} {
		results, err := ix.Search(ctx, q, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) after Del: got %d results, want 0", q, len(results))
		}
	}

	vals, err := st.MapGet(ctx, index.DefaultMetadataKey, "d1")
	if err != nil {
		t.Fatalf("MapGet: %v", err)
	}
	if vals[0] != nil {
		t.Errorf("metadata record survived Del: %s", vals[0])
	}
}

// Deleting one term of an id removes its metadata even though the id is
// still ranked under the other term's prefixes. The remaining entries
// surface as dangling references.
func TestDelUnconditionalMetadataRemoval(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	if err := ix.Add(ctx, "red", "x", record{Name: "x"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Add(ctx, "blue", "x", record{Name: "x"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Del(ctx, "red", "x"); err != nil {
		t.Fatalf("Del: %v", err)
	}

	results, err := ix.Search(ctx, "blue", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 dangling entry", len(results))
	}
	if results[0].ID != "x" {
		t.Errorf("id = %q, want x", results[0].ID)
	}
	if results[0].Value != nil {
		t.Errorf("dangling reference should have nil value, got %s", results[0].Value)
	}
}

func TestSearchEmptyResult(t *testing.T) {
	ix, _ := newTestIndexer()

	results, err := ix.Search(context.Background(), "nothing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil {
		t.Fatal("want empty slice, got nil")
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestInvalidArguments(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"add without id", func() error { return ix.Add(ctx, "term", "", record{}, 0) }},
		{"add without term", func() error { return ix.Add(ctx, "", "id", record{}, 0) }},
		{"add without value", func() error { return ix.Add(ctx, "term", "id", nil, 0) }},
		{"del without id", func() error { return ix.Del(ctx, "term", "") }},
		{"del without term", func() error { return ix.Del(ctx, "", "id") }},
		{"search empty query", func() error { _, err := ix.Search(ctx, "", 10); return err }},
		{"search whitespace query", func() error { _, err := ix.Search(ctx, "   ", 10); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestMultiWordFanOut(t *testing.T) {
	ix, _ := newTestIndexer()
	ctx := context.Background()

	if err := ix.Add(ctx, "new york city", "nyc", record{Name: "NYC"}, 5); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Prefixes of every word resolve to the same id.
	for _, q := range []string{"n", "new", "y", "york", "c", "city"} {
		results, err := ix.Search(ctx, q, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(results) != 1 || results[0].ID != "nyc" {
			t.Errorf("Search(%q): %+v, want single nyc hit", q, results)
		}
	}

	// But the whole phrase is not itself a prefix key.
	results, err := ix.Search(ctx, "new york", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("phrase lookup matched %d results, want 0", len(results))
	}
}

func TestCustomNamespace(t *testing.T) {
	st := memory.New()
	ix := index.New(st,
		index.WithKeyPrefix("app:ac:"),
		index.WithMetadataKey("app:meta"),
	)
	ctx := context.Background()

	if err := ix.Add(ctx, "cat", "c1", record{Name: "cat"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	members, err := st.TopN(ctx, "app:ac:cat", 10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(members) != 1 || members[0].ID != "c1" {
		t.Fatalf("ranked entry not under custom prefix: %+v", members)
	}
	vals, err := st.MapGet(ctx, "app:meta", "c1")
	if err != nil {
		t.Fatalf("MapGet: %v", err)
	}
	if vals[0] == nil {
		t.Fatal("metadata not under custom key")
	}
}
