package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/veloera/velo/internal/usage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	records := []usage.Record{
		{ModelName: "gpt-4o", Quota: 10, Count: 1, TokenUsed: 100, CreatedAt: 1000},
		{ModelName: "claude-3-5-sonnet", Quota: 20, Count: 2, TokenUsed: 200, CreatedAt: 2000},
		{ModelName: "gpt-4o", Quota: 5, Count: 1, TokenUsed: 50, CreatedAt: 3000},
	}
	if err := s.Save(ctx, records); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, 1000, 2500)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d records, want 2", len(got))
	}
	if got[0].CreatedAt != 1000 || got[1].CreatedAt != 2000 {
		t.Errorf("order = %d, %d; want oldest first", got[0].CreatedAt, got[1].CreatedAt)
	}
	if got[0].ModelName != "gpt-4o" || got[0].Quota != 10 {
		t.Errorf("record = %+v", got[0])
	}
}

func TestSaveUpsertsNotDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []usage.Record{{ModelName: "gpt-4o", Quota: 10, Count: 1, TokenUsed: 100, CreatedAt: 1000}}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	refreshed := []usage.Record{{ModelName: "gpt-4o", Quota: 15, Count: 2, TokenUsed: 150, CreatedAt: 1000}}
	if err := s.Save(ctx, refreshed); err != nil {
		t.Fatalf("Save refresh: %v", err)
	}

	got, err := s.Load(ctx, 0, 2000)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d records, want 1 (refetch must not duplicate)", len(got))
	}
	if got[0].Quota != 15 || got[0].Count != 2 {
		t.Errorf("record = %+v, want refreshed values", got[0])
	}
}

func TestSaveBlankModelNormalized(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, []usage.Record{{Quota: 1, Count: 1, CreatedAt: 500}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, 0, 1000)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].ModelName != usage.UnknownModel {
		t.Errorf("records = %+v, want model %q", got, usage.UnknownModel)
	}
}

func TestLoadEmptyWindow(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Load(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("loaded %d records from empty store", len(got))
	}
}
