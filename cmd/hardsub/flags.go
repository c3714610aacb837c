package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hardsub/internal/config"
	"hardsub/internal/media"
	"hardsub/internal/pipeline"
	"hardsub/internal/region"
	"hardsub/internal/services"
)

// parseROI accepts "x,y,width,height" or the geometry form "WxH+X+Y".
func parseROI(value string) (region.Rect, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return region.Rect{}, nil
	}
	var nums []string
	if strings.Contains(value, ",") {
		nums = strings.Split(value, ",")
	} else {
		size, offset, ok := strings.Cut(strings.ToLower(value), "+")
		w, h, okSize := strings.Cut(size, "x")
		x, y, okOffset := strings.Cut(offset, "+")
		if !ok || !okSize || !okOffset {
			return region.Rect{}, invalidROI(value)
		}
		nums = []string{x, y, w, h}
	}
	if len(nums) != 4 {
		return region.Rect{}, invalidROI(value)
	}
	vals := make([]int, 4)
	for i, n := range nums {
		v, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return region.Rect{}, invalidROI(value)
		}
		vals[i] = v
	}
	rect := region.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if err := rect.Validate(); err != nil {
		return region.Rect{}, services.Wrap(services.ErrInvalidParameter, "validate", "roi", err.Error(), nil)
	}
	return rect, nil
}

func invalidROI(value string) error {
	return services.Wrap(services.ErrInvalidParameter, "validate", "roi",
		fmt.Sprintf("%q is not x,y,width,height or WxH+X+Y", value), nil)
}

// resolveROI prefers the flag, then the stored ROI. given is false when
// neither names a region.
func resolveROI(flagValue string, cfg *config.Config) (roi region.Rect, given bool, err error) {
	if strings.TrimSpace(flagValue) != "" {
		roi, err = parseROI(flagValue)
		return roi, err == nil, err
	}
	if cfg != nil && !cfg.ROI.Empty() {
		return region.Rect{X: cfg.ROI.X, Y: cfg.ROI.Y, Width: cfg.ROI.Width, Height: cfg.ROI.Height}, true, nil
	}
	return region.Rect{}, false, nil
}

// wholeFrameROI probes video and returns a region covering every pixel.
func wholeFrameROI(ctx context.Context, decoder media.Decoder, video string) (region.Rect, error) {
	info, err := decoder.Probe(ctx, video)
	if err != nil {
		if services.Classify(err) == "error" {
			err = services.Wrap(services.ErrMedia, "probe", "frame size", video, err)
		}
		return region.Rect{}, err
	}
	return region.Rect{Width: info.Width, Height: info.Height}, nil
}

// paramFlags holds the tracking overrides shared by run.
type paramFlags struct {
	fps       float64
	threshold float64
	hold      float64
	fill      float64
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.fps, "fps", 0, "Frames sampled per second of video")
	cmd.Flags().Float64Var(&p.threshold, "threshold", 0, "Edit distance below which a reading repeats the previous line (0-1)")
	cmd.Flags().Float64Var(&p.hold, "hold", 0, "Seconds each cue is held past its last sighting")
	cmd.Flags().Float64Var(&p.fill, "fill", 0, "Longest silence in seconds bridged between cues")
}

// resolve starts from the configured parameters and applies the flags the
// user actually set.
func (p *paramFlags) resolve(cmd *cobra.Command, cfg *config.Config) pipeline.Params {
	params := pipeline.ParamsFromConfig(cfg.Pipeline)
	flags := cmd.Flags()
	if flags.Changed("fps") {
		params.SampleFPS = p.fps
	}
	if flags.Changed("threshold") {
		params.ChangeThreshold = p.threshold
	}
	if flags.Changed("hold") {
		params.HoldGap = p.hold
	}
	if flags.Changed("fill") {
		params.FillGaps = p.fill
	}
	return params
}
