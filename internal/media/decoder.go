package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hardsub/internal/media/ffprobe"
	"hardsub/internal/services"
)

// FramePattern is the file name template sampled frames are written with.
// Lexical order of the produced names equals frame order.
const FramePattern = "frame_%06d.png"

// ErrNoVideoStream reports a container without a decodable video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// VideoInfo describes the properties of a source video the pipeline needs.
type VideoInfo struct {
	Width     int
	Height    int
	Duration  float64
	FrameRate float64
	Codec     string
	SizeBytes int64
	BitRate   int64
}

// Decoder inspects videos and extracts frames from them.
type Decoder interface {
	Probe(ctx context.Context, path string) (VideoInfo, error)
	SampleFrames(ctx context.Context, path string, fps float64, dir string) error
	ExtractFrame(ctx context.Context, path string, seconds float64, dest string) error
}

// Option configures the FFmpeg decoder.
type Option func(*FFmpeg)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(f *FFmpeg) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// FFmpeg implements Decoder with the ffmpeg and ffprobe command-line tools.
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	exec    Executor
}

// NewFFmpeg constructs a decoder using the given binaries; blank names fall
// back to "ffmpeg" and "ffprobe" on PATH.
func NewFFmpeg(ffmpegBinary, ffprobeBinary string, opts ...Option) *FFmpeg {
	f := &FFmpeg{
		ffmpeg:  strings.TrimSpace(ffmpegBinary),
		ffprobe: strings.TrimSpace(ffprobeBinary),
		exec:    commandExecutor{},
	}
	if f.ffmpeg == "" {
		f.ffmpeg = "ffmpeg"
	}
	if f.ffprobe == "" {
		f.ffprobe = "ffprobe"
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Probe reads the video's dimensions, duration, and frame rate.
func (f *FFmpeg) Probe(ctx context.Context, path string) (VideoInfo, error) {
	output, err := f.exec.Run(ctx, f.ffprobe, ffprobe.Args(path))
	if err != nil {
		return VideoInfo{}, services.Wrap(services.ErrMedia, "probe", "ffprobe", path, err)
	}
	result, err := ffprobe.Parse(output)
	if err != nil {
		return VideoInfo{}, services.Wrap(services.ErrMedia, "probe", "parse", path, err)
	}
	stream, ok := result.VideoStream()
	if !ok {
		return VideoInfo{}, services.Wrap(services.ErrMedia, "probe", "inspect streams", path, ErrNoVideoStream)
	}
	return VideoInfo{
		Width:     stream.Width,
		Height:    stream.Height,
		Duration:  result.DurationSeconds(),
		FrameRate: stream.FrameRate(),
		Codec:     stream.CodecName,
		SizeBytes: result.SizeBytes(),
		BitRate:   result.BitRate(),
	}, nil
}

// SampleFrames decodes path at fps frames per second into dir using
// FramePattern. dir is created if needed.
func (f *FFmpeg) SampleFrames(ctx context.Context, path string, fps float64, dir string) error {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return services.Wrap(services.ErrInvalidParameter, "extract", "sample frames", fmt.Sprintf("sample fps %v must be positive", fps), nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "extract", "create frame directory", dir, err)
	}
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-i", path,
		"-vf", "fps=" + formatFloat(fps),
		filepath.Join(dir, FramePattern),
	}
	if _, err := f.exec.Run(ctx, f.ffmpeg, args); err != nil {
		return services.Wrap(services.ErrMedia, "extract", "ffmpeg", path, err)
	}
	return nil
}

// ExtractFrame writes the single frame at seconds (clamped to >= 0) to dest.
func (f *FFmpeg) ExtractFrame(ctx context.Context, path string, seconds float64, dest string) error {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "preview", "create output directory", dest, err)
	}
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-ss", formatFloat(seconds),
		"-i", path,
		"-frames:v", "1",
		dest,
	}
	if _, err := f.exec.Run(ctx, f.ffmpeg, args); err != nil {
		return services.Wrap(services.ErrMedia, "preview", "ffmpeg", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
