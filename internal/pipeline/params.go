package pipeline

import (
	"fmt"
	"math"

	"hardsub/internal/config"
	"hardsub/internal/services"
)

// Params are the temporal tracking parameters of a run.
type Params struct {
	SampleFPS       float64
	ChangeThreshold float64
	HoldGap         float64
	FillGaps        float64
}

// DefaultParams returns the stock tracking parameters.
func DefaultParams() Params {
	d := config.Default()
	return ParamsFromConfig(d.Pipeline)
}

// ParamsFromConfig copies the tracking parameters out of cfg.
func ParamsFromConfig(cfg config.Pipeline) Params {
	return Params{
		SampleFPS:       cfg.SampleFPS,
		ChangeThreshold: cfg.ChangeThreshold,
		HoldGap:         cfg.HoldGap,
		FillGaps:        cfg.FillGaps,
	}
}

// Validate reports the first out-of-range parameter as ErrInvalidParameter.
func (p Params) Validate() error {
	switch {
	case !finite(p.SampleFPS) || p.SampleFPS <= 0:
		return invalid(fmt.Sprintf("sample fps must be positive, got %v", p.SampleFPS))
	case !finite(p.ChangeThreshold) || p.ChangeThreshold < 0 || p.ChangeThreshold > 1:
		return invalid(fmt.Sprintf("change threshold must be within [0,1], got %v", p.ChangeThreshold))
	case !finite(p.HoldGap) || p.HoldGap < 0:
		return invalid(fmt.Sprintf("hold gap must not be negative, got %v", p.HoldGap))
	case !finite(p.FillGaps) || p.FillGaps < 0:
		return invalid(fmt.Sprintf("fill gaps must not be negative, got %v", p.FillGaps))
	}
	return nil
}

func invalid(msg string) error {
	return services.Wrap(services.ErrInvalidParameter, "validate", "params", msg, nil)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
