// Package ocr adapts external text recognizers to a single Engine interface
// and merges their per-line results into one subtitle reading.
//
// Engines run as child processes on a PNG of the cropped region:
//   - PaddleEngine drives a PaddleOCR JSON wrapper and tolerates every
//     result shape PaddleOCR has produced across releases.
//   - TesseractEngine parses tesseract's TSV output into line candidates.
//
// Recognizer output is untrusted. Malformed entries are dropped during
// parsing and Merge skips blank or degenerate candidates, so odd output never
// becomes an error; only a failing process does.
package ocr
