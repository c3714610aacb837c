// Package textutil normalizes recognized subtitle text and measures how far
// two readings are apart.
//
// The primary use cases are:
//   - Cleaning raw recognizer output (whitespace, look-alike glyphs, NFC)
//   - Converting between Chinese script variants through OpenCC profiles
//   - Computing rune-level edit distances for change detection
//
// Distances are measured on raw text; normalization is applied separately so
// that script conversion never masks a genuine text change.
package textutil
