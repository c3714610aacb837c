// Package main hosts the hardsub CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the decoder and
// recognition engine from it, and hands conversions to internal/pipeline.
// Helper commands cover the steps around a run: probing a video, grabbing a
// preview frame or ROI crop to pick the subtitle rectangle, checking external
// binaries, and maintaining the recognition cache.
package main
