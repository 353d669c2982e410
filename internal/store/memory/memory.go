// Package memory implements the index Store in process memory. It mirrors
// the Redis store's semantics, including the score-descending,
// member-lexicographic ordering of ranked sets, so it can stand in for Redis
// in tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/index"
)

// Store is a mutex-guarded in-memory index store.
type Store struct {
	mu    sync.RWMutex
	ranks map[string]map[string]float64
	maps  map[string]map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		ranks: make(map[string]map[string]float64),
		maps:  make(map[string]map[string][]byte),
	}
}

// Batch starts a write batch. Operations are buffered and applied under one
// lock on Submit, so readers never observe a partially applied batch.
func (s *Store) Batch() index.Batch {
	return &batch{store: s}
}

// TopN returns up to limit members of the ranked set at key by descending
// score, ties broken by ascending member (the Redis rule).
func (s *Store) TopN(ctx context.Context, key string, limit int) ([]index.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.ranks[key]
	members := make([]index.Member, 0, len(set))
	for id, score := range set {
		members = append(members, index.Member{ID: id, Score: score})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].ID < members[j].ID
	})
	if limit >= 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

// MapGet returns the requested fields of the map at key, nil for missing
// fields.
func (s *Store) MapGet(ctx context.Context, key string, fields ...string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.maps[key]
	out := make([][]byte, len(fields))
	for i, f := range fields {
		if v, ok := m[f]; ok {
			cp := make([]byte, len(v))
			copy(cp, v)
			out[i] = cp
		}
	}
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

type opKind int

const (
	opRankUpsert opKind = iota
	opRankRemove
	opMapSet
	opMapDelete
)

type op struct {
	kind   opKind
	key    string
	member string
	score  float64
	value  []byte
}

type batch struct {
	store *Store
	ops   []op
}

func (b *batch) RankUpsert(key, member string, score float64) {
	b.ops = append(b.ops, op{kind: opRankUpsert, key: key, member: member, score: score})
}

func (b *batch) RankRemove(key, member string) {
	b.ops = append(b.ops, op{kind: opRankRemove, key: key, member: member})
}

func (b *batch) MapSet(key, field string, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	b.ops = append(b.ops, op{kind: opMapSet, key: key, member: field, value: cp})
}

func (b *batch) MapDelete(key, field string) {
	b.ops = append(b.ops, op{kind: opMapDelete, key: key, member: field})
}

func (b *batch) Submit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range b.ops {
		switch o.kind {
		case opRankUpsert:
			set, ok := s.ranks[o.key]
			if !ok {
				set = make(map[string]float64)
				s.ranks[o.key] = set
			}
			set[o.member] = o.score
		case opRankRemove:
			if set, ok := s.ranks[o.key]; ok {
				delete(set, o.member)
				if len(set) == 0 {
					delete(s.ranks, o.key)
				}
			}
		case opMapSet:
			m, ok := s.maps[o.key]
			if !ok {
				m = make(map[string][]byte)
				s.maps[o.key] = m
			}
			m[o.member] = o.value
		case opMapDelete:
			if m, ok := s.maps[o.key]; ok {
				delete(m, o.member)
				if len(m) == 0 {
					delete(s.maps, o.key)
				}
			}
		}
	}
	b.ops = nil
	return nil
}
