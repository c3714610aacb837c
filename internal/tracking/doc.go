// Package tracking turns per-frame recognition results into timed subtitle
// segments.
//
// The flow is three steps:
//   - Tracker.Observe suppresses recognizer jitter: a reading within the
//     change threshold of the previous one is treated as the same line.
//   - BuildSegments merges consecutive items with the same text that are no
//     more than one and a half sample intervals apart.
//   - FillGaps removes overlaps and bridges short silences between cues.
package tracking
