// Package services defines shared error markers and context helpers used by
// the pipeline stages and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper so callers can tell media
//     failures, bad parameters, tool failures, and I/O problems apart with
//     errors.Is.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
