// Package media wraps the external decoder used to inspect videos and pull
// still frames out of them.
//
// Decoder is the seam the pipeline depends on; FFmpeg implements it by
// shelling out to ffprobe and ffmpeg through an Executor, which tests replace
// with a stub via WithExecutor. Subpackage ffprobe parses probe output and
// subpackage frames manages sampled frame directories.
package media
