package tracking

import (
	"hardsub/internal/textutil"
)

// Tracker decides, frame by frame, whether recognized text is a new line or
// a noisy re-reading of the previous one.
type Tracker struct {
	normalizer textutil.Normalizer
	threshold  float64
	prev       string
	items      []Item
}

// NewTracker creates a tracker. Readings whose normalized edit distance to
// the previous raw text is strictly below threshold are attributed to the
// previous text.
func NewTracker(normalizer textutil.Normalizer, threshold float64) *Tracker {
	return &Tracker{normalizer: normalizer, threshold: threshold}
}

// Observe records the reading for one frame. Empty text clears the previous
// reading, so a line that reappears after a blank frame always starts fresh.
// The returned bool is false when no item was produced.
func (t *Tracker) Observe(at float64, text string, pos Position) (Item, bool) {
	if text == "" {
		t.prev = ""
		return Item{}, false
	}

	raw := text
	if t.prev != "" && textutil.NormalizedDistance(t.prev, text) < t.threshold {
		raw = t.prev
	} else {
		t.prev = text
	}

	item := Item{Time: at, Raw: raw, Text: t.normalizer.Normalize(raw), Pos: pos}
	t.items = append(t.items, item)
	return item, true
}

// Items returns the items produced so far, in observation order.
func (t *Tracker) Items() []Item {
	return t.items
}

// Previous returns the raw text new readings are compared against.
func (t *Tracker) Previous() string {
	return t.prev
}
