// Package index implements the prefix-autocomplete core: term normalization,
// prefix key derivation, and the Add/Del/Search operations against an
// ordered key-value store.
//
// A term is decomposed into every prefix of every word; each prefix owns a
// ranked set of identifiers scored by priority, and a single shared map
// holds one serialized metadata record per identifier regardless of how many
// prefixes reference it.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/logger"
)

const (
	// DefaultKeyPrefix namespaces the per-prefix ranked sets.
	DefaultKeyPrefix = "trie:index:"
	// DefaultMetadataKey is the shared identifier-to-metadata map.
	DefaultMetadataKey = "trie:metadata"
	// DefaultSearchLimit caps Search results when the caller passes no
	// positive limit.
	DefaultSearchLimit = 20
)

// Indexer maintains the prefix index. It holds a single Store handle for its
// lifetime and performs no pooling, caching, or retries of its own; store
// failures propagate to the caller verbatim.
type Indexer struct {
	store       Store
	norm        *Normalizer
	keyPrefix   string
	metadataKey string
	logger      *slog.Logger
}

// Option customizes an Indexer.
type Option func(*Indexer)

// WithKeyPrefix overrides the ranked-set key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(ix *Indexer) { ix.keyPrefix = prefix }
}

// WithMetadataKey overrides the metadata map key.
func WithMetadataKey(key string) Option {
	return func(ix *Indexer) { ix.metadataKey = key }
}

// WithNormalizer substitutes the Normalizer used for both indexing and
// lookup.
func WithNormalizer(n *Normalizer) Option {
	return func(ix *Indexer) { ix.norm = n }
}

// New creates an Indexer over the given store.
func New(store Store, opts ...Option) *Indexer {
	ix := &Indexer{
		store:       store,
		norm:        NewNormalizer(),
		keyPrefix:   DefaultKeyPrefix,
		metadataKey: DefaultMetadataKey,
		logger:      logger.WithComponent("indexer"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Result is one suggest hit: the identifier, its priority score, and the
// metadata record as stored. Value is nil when the identifier is present in
// the ranked set but its metadata record is missing (a dangling reference
// left by out-of-order Add/Del usage).
type Result struct {
	ID    string          `json:"id"`
	Score float64         `json:"score"`
	Value json.RawMessage `json:"value"`
}

// Add indexes value under id for every prefix of every word of term, with
// the given priority. All prefix upserts and the metadata write are
// submitted as one atomic batch. Re-adding the same (term, id) overwrites
// the priority and metadata record; there is never more than one ranked
// entry per id under a prefix.
func (ix *Indexer) Add(ctx context.Context, term, id string, value any, priority float64) error {
	if term == "" {
		return fmt.Errorf("%w: term is required", apperrors.ErrInvalidArgument)
	}
	if id == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidArgument)
	}
	if value == nil {
		return fmt.Errorf("%w: value is required", apperrors.ErrInvalidArgument)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing metadata for id %q: %w", id, err)
	}

	prefixes := Prefixes(ix.norm.Term(term))
	batch := ix.store.Batch()
	for _, p := range prefixes {
		batch.RankUpsert(ix.keyPrefix+p, id, priority)
	}
	batch.MapSet(ix.metadataKey, id, data)
	if err := batch.Submit(ctx); err != nil {
		return fmt.Errorf("%w: indexing %q: %w", apperrors.ErrStoreUnavailable, id, err)
	}

	ix.logger.Debug("term indexed", "id", id, "prefixes", len(prefixes), "priority", priority)
	return nil
}

// Del removes the id's ranked entry from every prefix of every word of term,
// and the id's metadata record, in one atomic batch.
//
// The metadata record is removed unconditionally, even if the id was also
// indexed under other terms and still has ranked entries under their
// prefixes. Callers indexing one id under several terms must delete each
// term association themselves, or accept that metadata disappears after the
// first delete.
func (ix *Indexer) Del(ctx context.Context, term, id string) error {
	if term == "" {
		return fmt.Errorf("%w: term is required", apperrors.ErrInvalidArgument)
	}
	if id == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidArgument)
	}

	prefixes := Prefixes(ix.norm.Term(term))
	batch := ix.store.Batch()
	for _, p := range prefixes {
		batch.RankRemove(ix.keyPrefix+p, id)
	}
	batch.MapDelete(ix.metadataKey, id)
	if err := batch.Submit(ctx); err != nil {
		return fmt.Errorf("%w: deleting %q: %w", apperrors.ErrStoreUnavailable, id, err)
	}

	ix.logger.Debug("term deleted", "id", id, "prefixes", len(prefixes))
	return nil
}

// Search treats query as one exact prefix key (trimmed, transliterated,
// lowercased, no word splitting) and returns up to limit results ordered by
// descending priority. Tie order among equal priorities is store-defined and
// must not be relied on. A limit <= 0 selects DefaultSearchLimit.
//
// When the ranked set is empty no metadata fetch is issued; otherwise all
// metadata records are fetched in a single batched call, preserving rank
// order.
func (ix *Indexer) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	lookup := ix.norm.Lookup(query)
	if lookup == "" {
		return nil, fmt.Errorf("%w: query is required", apperrors.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	members, err := ix.store.TopN(ctx, ix.keyPrefix+lookup, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: rank query for %q: %w", apperrors.ErrStoreUnavailable, lookup, err)
	}
	if len(members) == 0 {
		return []Result{}, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	values, err := ix.store.MapGet(ctx, ix.metadataKey, ids...)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata fetch for %q: %w", apperrors.ErrStoreUnavailable, lookup, err)
	}

	results := make([]Result, len(members))
	for i, m := range members {
		results[i] = Result{ID: m.ID, Score: m.Score}
		if i < len(values) && values[i] != nil {
			results[i].Value = json.RawMessage(values[i])
		}
	}
	return results, nil
}
