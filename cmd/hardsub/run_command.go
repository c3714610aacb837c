package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hardsub/internal/ass"
	"hardsub/internal/config"
	"hardsub/internal/logging"
	"hardsub/internal/ocrcache"
	"hardsub/internal/pipeline"
	"hardsub/internal/services"
	"hardsub/internal/textutil"
	"hardsub/internal/tracking"
)

type runOptions struct {
	roi        string
	output     string
	params     paramFlags
	keepFrames bool
	debugFirst int
	saveROI    bool
	summary    bool
	noCache    bool
	jobs       int
	jsonOut    bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <video> [video...]",
		Short: "Recognize burned-in subtitles and write an ASS file per video",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.roi, "roi", "", "Subtitle region as x,y,width,height or WxH+X+Y (default: stored ROI, else whole frame)")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "Output path (single video only; default <video>_tc.ass)")
	opts.params.register(cmd)
	cmd.Flags().BoolVar(&opts.keepFrames, "keep-frames", false, "Keep sampled frames after the run")
	cmd.Flags().IntVar(&opts.debugFirst, "debug-first", 0, "Log the recognized text of the first N frames")
	cmd.Flags().BoolVar(&opts.saveROI, "save-roi", false, "Store the ROI and parameters in the config file after a successful run")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print the recognized segments as a table")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Bypass the recognition cache")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, "Videos converted concurrently")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	return cmd
}

func runConvert(cmd *cobra.Command, ctx *commandContext, opts *runOptions, videos []string) error {
	cfg, logger, err := ctx.shared()
	if err != nil {
		return err
	}
	if len(videos) > 1 && strings.TrimSpace(opts.output) != "" {
		return services.Wrap(services.ErrInvalidParameter, "validate", "output", "--out only applies to a single video", nil)
	}
	roi, roiGiven, err := resolveROI(opts.roi, cfg)
	if err != nil {
		return err
	}
	params := opts.params.resolve(cmd, cfg)
	if err := params.Validate(); err != nil {
		return err
	}

	pipe, cache, err := buildPipeline(cfg, logger, !opts.noCache)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.close()
	}

	keep := opts.keepFrames || cfg.Pipeline.KeepFrames
	every := cfg.Pipeline.ProgressEvery
	interactive := len(videos) == 1 && !opts.jsonOut && isTerminal(cmd.ErrOrStderr())

	results := make([]pipeline.Result, len(videos))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.jobs, 1))
	for i, video := range videos {
		req := pipeline.Request{
			VideoPath:     video,
			ROI:           roi,
			OutputPath:    strings.TrimSpace(opts.output),
			Params:        params,
			KeepFrames:    keep,
			ProgressEvery: every,
			DebugFirst:    opts.debugFirst,
		}
		renderer := newProgressRenderer(cmd.ErrOrStderr(), filepath.Base(video), interactive)
		g.Go(func() error {
			if !roiGiven {
				whole, err := wholeFrameROI(gctx, pipe.Decoder, video)
				if err != nil {
					return fmt.Errorf("%s: %w", video, err)
				}
				req.ROI = whole
				logger.Info("no roi given, recognizing the whole frame",
					logging.String("source", video),
					logging.String("roi", whole.String()),
				)
			}
			res, err := convert(gctx, pipe, req, renderer)
			if err != nil {
				return fmt.Errorf("%s: %w", video, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.saveROI {
		if err := saveRunSettings(ctx, cfg, results[0], params); err != nil {
			return err
		}
		logger.Info("run settings stored", logging.String("config", ctx.configPath))
	}
	if cache != nil {
		hits, misses := cache.engine.Counts()
		logger.Info("recognition cache",
			logging.Int64("hits", hits),
			logging.Int64("misses", misses),
		)
	}

	if opts.jsonOut {
		return writeJSON(cmd, runReports(results))
	}
	out := cmd.OutOrStdout()
	for _, res := range results {
		fmt.Fprintf(out, "Wrote %s (%d segments from %d frames)\n", res.OutputPath, len(res.Segments), res.Frames)
		if res.SkippedFrames > 0 {
			fmt.Fprintf(out, "  %d unreadable frames skipped\n", res.SkippedFrames)
		}
		if opts.summary {
			printSegments(out, res.Segments)
		}
	}
	return nil
}

// convert runs one request while a second goroutine renders its progress.
func convert(ctx context.Context, pipe *pipeline.Pipeline, req pipeline.Request, renderer progressRenderer) (pipeline.Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	stream := pipeline.NewProgressStream(gctx, 16)
	req.Progress = stream.Func()

	var result pipeline.Result
	g.Go(func() error {
		defer stream.Close()
		res, err := pipe.Run(services.WithRunID(gctx, uuid.NewString()), req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	g.Go(func() error {
		for p := range stream.Updates() {
			renderer.Update(p)
		}
		renderer.Finish()
		return nil
	})
	if err := g.Wait(); err != nil {
		return pipeline.Result{}, err
	}
	return result, nil
}

type cacheHandle struct {
	store  *ocrcache.Store
	engine *ocrcache.Engine
}

func (c *cacheHandle) close() {
	_ = c.store.Close()
}

// buildPipeline wires the decoder, engine, optional cache and normalizer
// from cfg. A cache that cannot be opened is reported and skipped.
func buildPipeline(cfg *config.Config, logger *slog.Logger, useCache bool) (*pipeline.Pipeline, *cacheHandle, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	conv, err := textutil.NewConverter(cfg.Text.Convert)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "config", "text conversion", cfg.Text.Convert, err)
	}

	var cache *cacheHandle
	if useCache && cfg.OCR.CacheEnabled {
		store, err := ocrcache.Open(cfg.CachePath())
		if err != nil {
			logging.WarnWithContext(logger, "recognition cache unavailable", "cache_open_failed",
				logging.String("path", cfg.CachePath()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run `hardsub cache clear` or delete the file"),
				logging.String(logging.FieldImpact, "every crop is recognized afresh"),
			)
		} else {
			wrapped := ocrcache.Wrap(engine, store, ocrcache.KeyOf(engine), logger)
			cache = &cacheHandle{store: store, engine: wrapped}
			engine = wrapped
		}
	}

	return &pipeline.Pipeline{
		Decoder:     newDecoder(cfg),
		Engine:      engine,
		Normalizer:  textutil.NewNormalizer(conv),
		Logger:      logger,
		ScratchRoot: cfg.Paths.ScratchDir,
	}, cache, nil
}

func saveRunSettings(ctx *commandContext, cfg *config.Config, res pipeline.Result, params pipeline.Params) error {
	if strings.TrimSpace(ctx.configPath) == "" {
		return services.Wrap(services.ErrConfiguration, "config", "save", "no config path resolved", nil)
	}
	cfg.ROI = config.ROI{X: res.ROI.X, Y: res.ROI.Y, Width: res.ROI.Width, Height: res.ROI.Height}
	cfg.Pipeline.SampleFPS = params.SampleFPS
	cfg.Pipeline.ChangeThreshold = params.ChangeThreshold
	cfg.Pipeline.HoldGap = params.HoldGap
	cfg.Pipeline.FillGaps = params.FillGaps
	if err := cfg.Save(ctx.configPath); err != nil {
		return services.Wrap(services.ErrIO, "config", "save", ctx.configPath, err)
	}
	return nil
}

func printSegments(w io.Writer, segs []tracking.Segment) {
	rows := make([][]string, 0, len(segs))
	for i, seg := range segs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			ass.FormatTimestamp(seg.Start),
			ass.FormatTimestamp(seg.End),
			strconv.FormatFloat(seg.Duration(), 'f', 2, 64),
			seg.Pos.String(),
			seg.Text,
		})
	}
	printTable(w, []string{"#", "Start", "End", "Seconds", "Position", "Text"}, rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft})
}

type segmentReport struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
}

type runReport struct {
	Video         string          `json:"video"`
	Output        string          `json:"output"`
	ROI           string          `json:"roi"`
	Frames        int             `json:"frames"`
	SkippedFrames int             `json:"skipped_frames"`
	Items         int             `json:"items"`
	ElapsedMS     int64           `json:"elapsed_ms"`
	Segments      []segmentReport `json:"segments"`
}

func runReports(results []pipeline.Result) []runReport {
	reports := make([]runReport, 0, len(results))
	for _, res := range results {
		segs := make([]segmentReport, 0, len(res.Segments))
		for _, seg := range res.Segments {
			segs = append(segs, segmentReport{
				Start:    seg.Start,
				End:      seg.End,
				Duration: seg.Duration(),
				Text:     seg.Text,
				X:        seg.Pos.X,
				Y:        seg.Pos.Y,
			})
		}
		reports = append(reports, runReport{
			Video:         res.VideoPath,
			Output:        res.OutputPath,
			ROI:           res.ROI.String(),
			Frames:        res.Frames,
			SkippedFrames: res.SkippedFrames,
			Items:         res.Items,
			ElapsedMS:     res.Elapsed.Milliseconds(),
			Segments:      segs,
		})
	}
	return reports
}
