package index

import "context"

// Member is one entry of a ranked set: an identifier and its priority score.
type Member struct {
	ID    string
	Score float64
}

// Store is the narrow view of the ordered key-value store the indexer needs.
// Any implementation with ranked sets, a field map, and atomic batches is
// substitutable; see internal/store/redis and internal/store/memory.
type Store interface {
	// Batch starts a write batch. Queued operations are applied as one
	// indivisible unit on Submit: concurrent readers observe either none
	// or all of them.
	Batch() Batch

	// TopN returns up to limit members of the ranked set at key, ordered
	// by descending score. Tie order among equal scores is
	// implementation-defined.
	TopN(ctx context.Context, key string, limit int) ([]Member, error)

	// MapGet fetches the named fields from the map at key in one call.
	// The result has one element per requested field, in order; missing
	// fields yield a nil element.
	MapGet(ctx context.Context, key string, fields ...string) ([][]byte, error)
}

// Batch collects ranked-set and map mutations for atomic submission.
// Implementations are single-use: after Submit the batch must be discarded.
type Batch interface {
	// RankUpsert adds member to the ranked set at key with the given
	// score, overwriting the score if the member already exists.
	RankUpsert(key, member string, score float64)

	// RankRemove removes member from the ranked set at key.
	RankRemove(key, member string)

	// MapSet sets a field of the map at key.
	MapSet(key, field string, value []byte)

	// MapDelete removes a field of the map at key.
	MapDelete(key, field string)

	// Submit applies all queued operations atomically.
	Submit(ctx context.Context) error
}
