// Package pipeline converts the hardcoded subtitles of a video into an ASS
// script.
//
// A run samples frames, crops the subtitle region from each one, recognizes
// its text, tracks the text over time, and writes the resulting cues:
//
//	extract (0-10%) -> ocr (10-95%) -> write (95-100%) -> done
//
// Progress is reported synchronously through Request.Progress; wrap it in a
// ProgressStream to consume updates from another goroutine. Every failure is
// tagged with one of the services markers, and the run's scratch directory
// is released on every path.
package pipeline
