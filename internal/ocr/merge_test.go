package ocr

import (
	"image"
	"math"
	"testing"
)

func box(x0, y0, x1, y1 float64) []Point {
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func TestMergeJoinsInEngineOrder(t *testing.T) {
	cands := []Candidate{
		{Box: box(100, 10, 200, 30), Text: " 第二行 "},
		{Box: box(0, 40, 50, 60), Text: "第一行\t甲丨乙"},
	}
	text, pos := Merge(cands, image.Pt(10, 500))
	if text != "第二行 第一行 甲｜乙" {
		t.Fatalf("unexpected text %q", text)
	}
	// bbox x 0..200, y 10..60
	if pos != image.Pt(110, 535) {
		t.Fatalf("unexpected position %v", pos)
	}
}

func TestMergeSkipsBlankAndShortBoxes(t *testing.T) {
	cands := []Candidate{
		{Box: box(0, 0, 1000, 1000), Text: "   "},
		{Box: []Point{{0, 0}, {5, 5}, {9, 9}}, Text: "short"},
		{Box: box(10, 10, 20, 21), Text: "ok"},
	}
	text, pos := Merge(cands, image.Point{})
	if text != "ok" {
		t.Fatalf("unexpected text %q", text)
	}
	if pos != image.Pt(15, 15) {
		t.Fatalf("expected truncated centre (15,15), got %v", pos)
	}
}

func TestMergeNothingUsable(t *testing.T) {
	for name, cands := range map[string][]Candidate{
		"nil":        nil,
		"blank only": {{Box: box(0, 0, 1, 1), Text: ""}},
		"nan box": {{Box: []Point{
			{math.NaN(), 1}, {math.Inf(1), 2}, {3, math.NaN()}, {math.NaN(), math.NaN()},
		}, Text: "x"}},
	} {
		text, pos := Merge(cands, image.Pt(7, 7))
		if text != "" || pos != (image.Point{}) {
			t.Fatalf("%s: expected empty result, got %q %v", name, text, pos)
		}
	}
}

func TestMergeIgnoresNonFinitePoints(t *testing.T) {
	b := append(box(0, 0, 10, 10), Point{math.Inf(1), 0})
	text, pos := Merge([]Candidate{{Box: b, Text: "a"}}, image.Point{})
	if text != "a" || pos != image.Pt(5, 5) {
		t.Fatalf("unexpected merge %q %v", text, pos)
	}
}

func TestMergeCountsReportedVertices(t *testing.T) {
	cands := []Candidate{
		{Box: []Point{{0, 0}, {8, 0}, {8, 4}}, Vertices: 4, Text: "kept"},
		{Box: []Point{{0, 0}, {8, 0}, {8, 4}}, Vertices: 3, Text: "dropped"},
	}
	text, pos := Merge(cands, image.Point{})
	if text != "kept" || pos != image.Pt(4, 2) {
		t.Fatalf("unexpected merge %q %v", text, pos)
	}
}
