package tracking

import (
	"slices"
	"sort"
)

// adjacencyFactor is how many sample intervals may separate two items of
// the same segment.
const adjacencyFactor = 1.5

// BuildSegments merges consecutive items into segments. An item joins the
// open segment when its text matches and it follows the previous item by at
// most 1.5/fps seconds. A closed segment ends holdGap after its last item and
// is placed at the per-axis median of its items' positions.
func BuildSegments(items []Item, fps, holdGap float64) []Segment {
	if len(items) == 0 {
		return []Segment{}
	}
	maxStep := adjacencyFactor / fps

	segments := make([]Segment, 0)
	cur := items[0]
	start, last := cur.Time, cur.Time
	positions := []Position{cur.Pos}

	flush := func() {
		segments = append(segments, Segment{
			Start: start,
			End:   last + holdGap,
			Text:  cur.Text,
			Pos:   medianPosition(positions),
		})
	}

	for _, it := range items[1:] {
		if it.Text == cur.Text && it.Time-last <= maxStep {
			positions = append(positions, it.Pos)
			last = it.Time
			continue
		}
		flush()
		cur = it
		start, last = it.Time, it.Time
		positions = []Position{it.Pos}
	}
	flush()
	return segments
}

// medianPosition sorts each axis independently and takes element len/2, the
// upper median for even counts.
func medianPosition(ps []Position) Position {
	xs := make([]int, len(ps))
	ys := make([]int, len(ps))
	for i, p := range ps {
		xs[i], ys[i] = p.X, p.Y
	}
	slices.Sort(xs)
	slices.Sort(ys)
	return Position{X: xs[len(xs)/2], Y: ys[len(ys)/2]}
}

// FillGaps sorts segs by start (stably) and adjusts each segment's end
// against its successor: overlaps are cut back to the next start, and
// silences no longer than maxGap are bridged by extending to the next start.
// segs is modified in place and returned; applying it twice changes nothing.
func FillGaps(segs []Segment, maxGap float64) []Segment {
	if len(segs) == 0 {
		return segs
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	for i := 0; i < len(segs)-1; i++ {
		gap := segs[i+1].Start - segs[i].End
		switch {
		case gap < 0:
			segs[i].End = segs[i+1].Start
		case gap > 0 && gap <= maxGap:
			segs[i].End = segs[i+1].Start
		}
	}
	return segs
}
