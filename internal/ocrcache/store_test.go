package ocrcache

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"hardsub/internal/ocr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "recognition.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleCandidates() []ocr.Candidate {
	return []ocr.Candidate{{
		Box:   []ocr.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5}},
		Text:  "字幕",
		Score: 0.9,
	}}
}

func TestStorePutLookup(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, ok, err := store.Lookup(ctx, "abc", "paddle"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, "abc", "paddle", sampleCandidates()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Lookup(ctx, "abc", "paddle")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Text != "字幕" || len(got[0].Box) != 4 {
		t.Fatalf("unexpected cached candidates %+v", got)
	}
	if _, ok, _ := store.Lookup(ctx, "abc", "tesseract"); ok {
		t.Fatal("engine key must separate entries")
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 || stats.Hits != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.SizeBytes == 0 {
		t.Fatal("expected non-zero database size")
	}
}

func TestStoreEmptyResultIsCached(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.Put(ctx, "blank", "paddle", nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Lookup(ctx, "blank", "paddle")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty candidates, got %+v", got)
	}
}

func TestStoreClearAndPrune(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	prev := now
	t.Cleanup(func() { now = prev })
	now = func() string { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Format(timeLayout) }
	if err := store.Put(ctx, "old", "k", sampleCandidates()); err != nil {
		t.Fatalf("Put old: %v", err)
	}
	now = prev
	if err := store.Put(ctx, "new", "k", sampleCandidates()); err != nil {
		t.Fatalf("Put new: %v", err)
	}

	pruned, err := store.Prune(ctx, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", pruned)
	}
	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 cleared entry, got %d", cleared)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "recognition.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(ctx, "h", "k", sampleCandidates()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.Lookup(ctx, "h", "k"); err != nil || !ok {
		t.Fatalf("expected persisted entry, ok=%v err=%v", ok, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recognition.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

type countingEngine struct {
	calls int
	err   error
}

func (c *countingEngine) Recognize(context.Context, image.Image) ([]ocr.Candidate, error) {
	c.calls++
	return sampleCandidates(), c.err
}

func (c *countingEngine) Key() string { return "counting:v1" }

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEngineServesRepeatsFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingEngine{}
	engine := Wrap(inner, openTestStore(t), KeyOf(inner), nil)

	for i := 0; i < 3; i++ {
		cands, err := engine.Recognize(ctx, solid(color.White))
		if err != nil {
			t.Fatalf("Recognize: %v", err)
		}
		if len(cands) != 1 {
			t.Fatalf("unexpected candidates %+v", cands)
		}
	}
	if _, err := engine.Recognize(ctx, solid(color.Black)); err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 engine calls, got %d", inner.calls)
	}
	hits, misses := engine.Counts()
	if hits != 2 || misses != 2 {
		t.Fatalf("unexpected counts hits=%d misses=%d", hits, misses)
	}
}

func TestEngineDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	inner := &countingEngine{err: errors.New("boom")}
	store := openTestStore(t)
	engine := Wrap(inner, store, "k", nil)

	if _, err := engine.Recognize(ctx, solid(color.White)); err == nil {
		t.Fatal("expected error")
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("failure must not be cached, got %d entries", stats.Entries)
	}
}

func TestKeyOf(t *testing.T) {
	if got := KeyOf(&countingEngine{}); got != "counting:v1" {
		t.Fatalf("unexpected key %q", got)
	}
	type plain struct{ ocr.Engine }
	if got := KeyOf(plain{}); got == "" {
		t.Fatal("expected type-derived key")
	}
}
