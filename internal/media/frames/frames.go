// Package frames samples still frames from a video into a per-run scratch
// directory and hands them back in playback order.
package frames

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"hardsub/internal/logging"
	"hardsub/internal/media"
	"hardsub/internal/services"
)

// Sampler extracts frames at a fixed rate through a decoder.
type Sampler struct {
	Decoder media.Decoder
}

// Sample writes frames of videoPath at fps into dir and returns the image
// paths sorted by name, which is frame order.
func (s Sampler) Sample(ctx context.Context, videoPath string, fps float64, dir string) ([]string, error) {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return nil, services.Wrap(services.ErrInvalidParameter, "extract", "sample", fmt.Sprintf("sample fps %v must be positive", fps), nil)
	}
	if s.Decoder == nil {
		return nil, services.Wrap(services.ErrMedia, "extract", "sample", "no decoder configured", nil)
	}
	if err := s.Decoder.SampleFrames(ctx, videoPath, fps, dir); err != nil {
		return nil, err
	}
	return List(dir)
}

// List returns the PNG frames in dir in frame order. Names are compared by
// their trailing frame number so the order survives the extra digit ffmpeg
// adds past frame 999999; names without a number sort last, by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "extract", "list frames", dir, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.SliceStable(paths, func(i, j int) bool {
		a, okA := frameIndex(paths[i])
		b, okB := frameIndex(paths[j])
		switch {
		case okA && okB && a != b:
			return a < b
		case okA != okB:
			return okA
		default:
			return paths[i] < paths[j]
		}
	})
	return paths, nil
}

// frameIndex parses the digits ending a frame file name, as in
// frame_000042.png.
func frameIndex(path string) (int, bool) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	start := len(name)
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == len(name) {
		return 0, false
	}
	n, err := strconv.Atoi(name[start:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Scratch is a uniquely named working directory owned by one run.
type Scratch struct {
	dir    string
	keep   bool
	logger *slog.Logger
}

// NewScratch creates root/frames-<uuid>. With keep set, Release leaves the
// directory in place for inspection.
func NewScratch(root string, keep bool, logger *slog.Logger) (*Scratch, error) {
	if strings.TrimSpace(root) == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "frames-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "extract", "create scratch directory", dir, err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scratch{dir: dir, keep: keep, logger: logger}, nil
}

// Dir returns the scratch directory path.
func (s *Scratch) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Release removes the scratch directory unless it is being kept. Failures
// are logged; a finished run should not fail over leftover frames.
func (s *Scratch) Release() {
	if s == nil || s.dir == "" {
		return
	}
	if s.keep {
		s.logger.Info("keeping sampled frames", logging.String("frames_dir", s.dir))
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		logging.WarnWithContext(s.logger, "scratch cleanup failed", "scratch_cleanup_failed",
			logging.String("frames_dir", s.dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
			logging.String(logging.FieldImpact, "sampled frames left on disk"),
		)
		return
	}
	s.dir = ""
}
