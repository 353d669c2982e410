package memory

import (
	"context"
	"testing"
)

func TestRankUpsertAndTopN(t *testing.T) {
	st := New()
	ctx := context.Background()

	b := st.Batch()
	b.RankUpsert("k", "low", 1)
	b.RankUpsert("k", "high", 10)
	b.RankUpsert("k", "mid", 5)
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	members, err := st.TopN(ctx, "k", 10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	want := []string{"high", "mid", "low"}
	if len(members) != len(want) {
		t.Fatalf("got %d members, want %d", len(members), len(want))
	}
	for i, w := range want {
		if members[i].ID != w {
			t.Errorf("members[%d].ID = %q, want %q", i, members[i].ID, w)
		}
	}
}

// Equal scores order lexicographically by member, matching Redis.
func TestTopNTieOrder(t *testing.T) {
	st := New()
	ctx := context.Background()

	b := st.Batch()
	b.RankUpsert("k", "charlie", 1)
	b.RankUpsert("k", "alpha", 1)
	b.RankUpsert("k", "bravo", 1)
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	members, err := st.TopN(ctx, "k", 3)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	for i, w := range want {
		if members[i].ID != w {
			t.Errorf("members[%d].ID = %q, want %q", i, members[i].ID, w)
		}
	}
}

func TestTopNLimitAndMissingKey(t *testing.T) {
	st := New()
	ctx := context.Background()

	b := st.Batch()
	for _, id := range []string{"a", "b", "c"} {
		b.RankUpsert("k", id, 1)
	}
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	members, err := st.TopN(ctx, "k", 2)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("got %d members, want 2", len(members))
	}

	members, err = st.TopN(ctx, "absent", 5)
	if err != nil {
		t.Fatalf("TopN on missing key: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("missing key returned %d members, want 0", len(members))
	}
}

func TestRankUpsertOverwritesScore(t *testing.T) {
	st := New()
	ctx := context.Background()

	b := st.Batch()
	b.RankUpsert("k", "m", 1)
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	b = st.Batch()
	b.RankUpsert("k", "m", 7)
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	members, _ := st.TopN(ctx, "k", 10)
	if len(members) != 1 {
		t.Fatalf("got %d members, want 1", len(members))
	}
	if members[0].Score != 7 {
		t.Errorf("score = %v, want 7", members[0].Score)
	}
}

func TestMapSetGetDelete(t *testing.T) {
	st := New()
	ctx := context.Background()

	b := st.Batch()
	b.MapSet("meta", "a", []byte(`{"n":1}`))
	b.MapSet("meta", "b", []byte(`{"n":2}`))
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	vals, err := st.MapGet(ctx, "meta", "a", "missing", "b")
	if err != nil {
		t.Fatalf("MapGet: %v", err)
	}
	if string(vals[0]) != `{"n":1}` {
		t.Errorf("vals[0] = %s", vals[0])
	}
	if vals[1] != nil {
		t.Errorf("missing field should be nil, got %s", vals[1])
	}
	if string(vals[2]) != `{"n":2}` {
		t.Errorf("vals[2] = %s", vals[2])
	}

	b = st.Batch()
	b.MapDelete("meta", "a")
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	vals, _ = st.MapGet(ctx, "meta", "a")
	if vals[0] != nil {
		t.Errorf("deleted field still present: %s", vals[0])
	}
}

// Nothing from a batch is visible before Submit.
func TestBatchNotVisibleUntilSubmit(t *testing.T) {
	st := New()
	ctx := context.Background()

	b := st.Batch()
	b.RankUpsert("k", "m", 1)
	b.MapSet("meta", "m", []byte("v"))

	members, _ := st.TopN(ctx, "k", 10)
	if len(members) != 0 {
		t.Errorf("unsubmitted rank upsert visible: %+v", members)
	}
	vals, _ := st.MapGet(ctx, "meta", "m")
	if vals[0] != nil {
		t.Errorf("unsubmitted map set visible: %s", vals[0])
	}

	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	members, _ = st.TopN(ctx, "k", 10)
	if len(members) != 1 {
		t.Errorf("submitted batch not visible")
	}
}

func TestMapGetReturnsCopies(t *testing.T) {
	st := New()
	ctx := context.Background()

	b := st.Batch()
	b.MapSet("meta", "a", []byte("abc"))
	if err := b.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	vals, _ := st.MapGet(ctx, "meta", "a")
	vals[0][0] = 'X'

	again, _ := st.MapGet(ctx, "meta", "a")
	if string(again[0]) != "abc" {
		t.Errorf("stored value mutated through returned slice: %s", again[0])
	}
}
