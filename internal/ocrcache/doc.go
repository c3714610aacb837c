// Package ocrcache memoizes recognizer results in a SQLite database.
//
// Consecutive sampled frames of a static subtitle crop to identical pixels,
// and re-running a video with different tracking parameters recognizes the
// same crops again. Entries are keyed by the SHA-256 of the crop's PNG
// encoding together with the engine's configuration key, so switching
// engines or arguments never serves stale text.
//
// Key types:
//   - Store: the database handle (Open, Lookup, Put, Stats, Clear, Prune)
//   - Engine: an ocr.Engine decorator that consults the store first
package ocrcache
