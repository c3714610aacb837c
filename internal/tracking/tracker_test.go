package tracking

import (
	"testing"

	"hardsub/internal/textutil"
)

type suffixConverter struct{}

func (suffixConverter) Convert(s string) string { return s + "*" }

func TestTrackerEmptyResetsPrevious(t *testing.T) {
	tr := NewTracker(textutil.Normalizer{}, 0.5)
	if _, ok := tr.Observe(0, "Hello", Position{}); !ok {
		t.Fatal("expected item")
	}
	if _, ok := tr.Observe(1, "", Position{}); ok {
		t.Fatal("empty text must not produce an item")
	}
	if tr.Previous() != "" {
		t.Fatalf("expected reset, got %q", tr.Previous())
	}
	item, ok := tr.Observe(2, "Hellx", Position{X: 3})
	if !ok || item.Raw != "Hellx" {
		t.Fatalf("reading after blank must start fresh, got %+v", item)
	}
}

func TestTrackerKeepsStableTextUnderNoise(t *testing.T) {
	tr := NewTracker(textutil.NewNormalizer(suffixConverter{}), 0.3)
	tr.Observe(0, "Hello", Position{X: 1, Y: 1})
	item, ok := tr.Observe(0.5, "Hellx", Position{X: 9, Y: 9})
	if !ok {
		t.Fatal("expected item")
	}
	if item.Raw != "Hello" || item.Text != "Hello*" {
		t.Fatalf("noisy reading should reuse previous text, got %+v", item)
	}
	if item.Time != 0.5 || item.Pos != (Position{X: 9, Y: 9}) {
		t.Fatalf("time and position must come from the current frame, got %+v", item)
	}
	if tr.Previous() != "Hello" {
		t.Fatalf("previous must stay unchanged, got %q", tr.Previous())
	}
	if len(tr.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(tr.Items()))
	}
}

func TestTrackerThresholdZeroNeverMerges(t *testing.T) {
	tr := NewTracker(textutil.Normalizer{}, 0)
	for i, text := range []string{"Hello", "Hellx", "Hello", "Hello"} {
		tr.Observe(float64(i), text, Position{})
	}
	var raws []string
	for _, it := range tr.Items() {
		raws = append(raws, it.Raw)
	}
	want := []string{"Hello", "Hellx", "Hello", "Hello"}
	for i := range want {
		if raws[i] != want[i] {
			t.Fatalf("items = %q, want %q", raws, want)
		}
	}
	segs := BuildSegments(tr.Items(), 1, 0)
	if len(segs) != 3 {
		t.Fatalf("expected every distinct text to start a segment, got %+v", segs)
	}
}

func TestTrackerThresholdOneBoundary(t *testing.T) {
	tr := NewTracker(textutil.Normalizer{}, 1)
	tr.Observe(0, "abcd", Position{})
	item, _ := tr.Observe(1, "abzz", Position{})
	if item.Raw != "abcd" {
		t.Fatalf("partial change below threshold should merge, got %q", item.Raw)
	}
	item, _ = tr.Observe(2, "wxyz", Position{})
	if item.Raw != "wxyz" {
		t.Fatalf("distance exactly 1 must not merge, got %q", item.Raw)
	}
	if tr.Previous() != "wxyz" {
		t.Fatalf("previous should advance to new text, got %q", tr.Previous())
	}
}

func TestTrackerStrictLessThan(t *testing.T) {
	tr := NewTracker(textutil.Normalizer{}, 0.25)
	tr.Observe(0, "abcd", Position{})
	item, _ := tr.Observe(1, "abce", Position{})
	if item.Raw != "abce" {
		t.Fatalf("distance equal to threshold must stay unmerged, got %q", item.Raw)
	}
}
