package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"hardsub/internal/ass"
	"hardsub/internal/logging"
	"hardsub/internal/media"
	"hardsub/internal/media/frames"
	"hardsub/internal/ocr"
	"hardsub/internal/region"
	"hardsub/internal/services"
	"hardsub/internal/textutil"
	"hardsub/internal/tracking"
)

// OutputSuffix is appended to the video's base name for the default output.
const OutputSuffix = "_tc.ass"

// DefaultProgressEvery is the recognition progress cadence in frames.
const DefaultProgressEvery = 5

// Pipeline holds the collaborators shared by runs. A Pipeline may serve
// concurrent runs; each run owns its tracker, scratch directory and output
// lock.
type Pipeline struct {
	Decoder    media.Decoder
	Engine     ocr.Engine
	Normalizer textutil.Normalizer
	Logger     *slog.Logger
	// ScratchRoot is where per-run frame directories are created. Empty
	// means the system temp directory.
	ScratchRoot string
}

// Request describes one conversion.
type Request struct {
	VideoPath string
	// ROI is the subtitle region in frame pixels. It is used as given; a
	// region with no area reads every frame as no text.
	ROI region.Rect
	// OutputPath defaults to the video path with its extension replaced by
	// OutputSuffix.
	OutputPath    string
	Params        Params
	KeepFrames    bool
	ProgressEvery int
	// DebugFirst logs the recognition result of the first N frames at info
	// level.
	DebugFirst int
	Progress   ProgressFunc
}

// Result summarizes a finished run.
type Result struct {
	VideoPath     string
	OutputPath    string
	Segments      []tracking.Segment
	Frames        int
	SkippedFrames int
	Items         int
	ROI           region.Rect
	Video         media.VideoInfo
	Elapsed       time.Duration
}

// DefaultOutputPath returns the output path used when a request names none.
func DefaultOutputPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + OutputSuffix
}

// Run executes the full conversion. On success the output file is complete;
// on failure no partial output is left behind.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	if _, ok := services.RunIDFromContext(ctx); !ok {
		ctx = services.WithRunID(ctx, uuid.NewString())
	}
	ctx = services.WithVideo(ctx, req.VideoPath)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "pipeline"))

	if err := req.Params.Validate(); err != nil {
		return Result{}, err
	}
	if err := req.ROI.Validate(); err != nil {
		return Result{}, services.Wrap(services.ErrInvalidParameter, "validate", "roi", err.Error(), nil)
	}
	if p.Decoder == nil || p.Engine == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "validate", "pipeline", "decoder and engine are required", nil)
	}
	if err := checkVideo(req.VideoPath); err != nil {
		return Result{}, err
	}

	outputPath := strings.TrimSpace(req.OutputPath)
	if outputPath == "" {
		outputPath = DefaultOutputPath(req.VideoPath)
		logger.Debug("output path defaulted",
			logging.Args(logging.DecisionAttrs("output_path", outputPath, "no output path given")...)...)
	}

	info, err := p.Decoder.Probe(ctx, req.VideoPath)
	if err != nil {
		return Result{}, ensureMarker(err, services.ErrMedia, "probe", req.VideoPath)
	}
	roi := req.ROI
	if roi.Empty() {
		logging.WarnWithContext(logger, "roi covers no pixels", "roi_empty",
			logging.String("roi", roi.String()),
			logging.String(logging.FieldErrorHint, "pass a region with positive width and height"),
			logging.String(logging.FieldImpact, "every frame reads as no text"),
		)
	}
	every := req.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	logger.Info("conversion started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source", req.VideoPath),
		logging.String("resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)),
		logging.Float64("duration_seconds", info.Duration),
		logging.String("roi", roi.String()),
		logging.Float64("sample_fps", req.Params.SampleFPS),
		logging.Float64("change_threshold", req.Params.ChangeThreshold),
		logging.Float64("hold_gap", req.Params.HoldGap),
		logging.Float64("fill_gaps", req.Params.FillGaps),
		logging.String("output", outputPath),
	)

	unlock, err := lockOutput(outputPath)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	scratch, err := frames.NewScratch(p.ScratchRoot, req.KeepFrames, logger)
	if err != nil {
		return Result{}, err
	}
	defer scratch.Release()

	sampler := logging.NewProgressSampler(0.05)
	rep := &reporter{fn: req.Progress, hook: func(pr Progress) {
		if sampler.ShouldLog(pr.Stage, pr.Fraction) {
			logger.Info("progress",
				logging.String(logging.FieldStage, pr.Stage),
				logging.Float64("percent", pr.Fraction*100),
				logging.String("message", pr.Message),
			)
		}
	}}

	rep.report(StageExtract, 0, "Extracting frames")
	framePaths, err := frames.Sampler{Decoder: p.Decoder}.Sample(services.WithStage(ctx, StageExtract), req.VideoPath, req.Params.SampleFPS, scratch.Dir())
	if err != nil {
		return Result{}, ensureMarker(err, services.ErrMedia, StageExtract, req.VideoPath)
	}
	rep.report(StageExtract, 1, fmt.Sprintf("Extracted %d frames", len(framePaths)))

	ocrCtx := services.WithStage(ctx, StageOCR)
	tracker := tracking.NewTracker(p.Normalizer, req.Params.ChangeThreshold)
	total := len(framePaths)
	skipped := 0
	if total == 0 {
		rep.report(StageOCR, 1, "No frames to recognize")
	}
	for i, path := range framePaths {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		at := float64(i) / req.Params.SampleFPS

		img, readErr := readFrame(path)
		if readErr != nil {
			skipped++
			logging.WarnWithContext(logger, "frame unreadable, skipping", "frame_unreadable",
				logging.String("frame", filepath.Base(path)),
				logging.Error(readErr),
				logging.String(logging.FieldErrorHint, "check the decoder output"),
				logging.String(logging.FieldImpact, "frame ignored"),
			)
		} else {
			text, pos, err := p.recognize(ocrCtx, img, roi)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return Result{}, ctxErr
				}
				return Result{}, ensureMarker(err, services.ErrExternalTool, StageOCR, filepath.Base(path))
			}
			if i < req.DebugFirst {
				logger.Info("frame recognized",
					logging.Seconds("time", at),
					logging.String("text", text),
					logging.String("position", pos.String()),
				)
			}
			tracker.Observe(at, text, pos)
		}

		if i%every == 0 || i == total-1 {
			rep.report(StageOCR, float64(i+1)/float64(total), fmt.Sprintf("Recognizing frames (%d/%d)", i+1, total))
		}
	}

	items := tracker.Items()
	segments := tracking.BuildSegments(items, req.Params.SampleFPS, req.Params.HoldGap)
	segments = tracking.FillGaps(segments, req.Params.FillGaps)

	rep.report(StageWrite, 0, "Writing subtitles")
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := ass.WriteFile(outputPath, segments, info.Width, info.Height); err != nil {
		return Result{}, services.Wrap(services.ErrIO, StageWrite, "write subtitles", outputPath, err)
	}
	rep.report(StageWrite, 1, "Subtitles written")

	result := Result{
		VideoPath:     req.VideoPath,
		OutputPath:    outputPath,
		Segments:      segments,
		Frames:        total,
		SkippedFrames: skipped,
		Items:         len(items),
		ROI:           roi,
		Video:         info,
		Elapsed:       time.Since(started),
	}
	logger.Info("conversion completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("output", outputPath),
		logging.Int("frames", result.Frames),
		logging.Int("items", result.Items),
		logging.Int("segments", len(segments)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// recognize crops img to roi and returns the merged reading. An empty crop
// reads as no text without consulting the engine.
func (p *Pipeline) recognize(ctx context.Context, img image.Image, roi region.Rect) (string, tracking.Position, error) {
	crop, offset := region.Crop(img, roi)
	if region.IsEmpty(crop) {
		return "", tracking.Position{}, nil
	}
	cands, err := p.Engine.Recognize(ctx, crop)
	if err != nil {
		return "", tracking.Position{}, err
	}
	text, pt := ocr.Merge(cands, offset)
	return strings.TrimSpace(text), tracking.Position{X: pt.X, Y: pt.Y}, nil
}

func readFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func checkVideo(path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrMedia, "validate", "video", "no video path given", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrMedia, "validate", "video", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrMedia, "validate", "video", path+" is a directory", nil)
	}
	return nil
}

// lockOutput takes an exclusive lock beside the output path so two runs
// cannot write the same subtitle file. The lock file stays on disk:
// unlinking it would let a run lock the orphaned inode while another locks
// a fresh file at the same path.
func lockOutput(outputPath string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "lock", "create output directory", outputPath, err)
	}
	lockPath := outputPath + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "lock", "acquire output lock", lockPath, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrIO, "lock", "acquire output lock", "another run is writing "+outputPath, nil)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}

var markers = []error{
	services.ErrMedia,
	services.ErrInvalidParameter,
	services.ErrExternalTool,
	services.ErrIO,
	services.ErrConfiguration,
}

// ensureMarker tags err with marker unless it already carries a marker or
// is a context cancellation.
func ensureMarker(err, marker error, stage, detail string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, m := range markers {
		if errors.Is(err, m) {
			return err
		}
	}
	return services.Wrap(marker, stage, "", detail, err)
}
