package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"hardsub/internal/pipeline"
)

type progressRenderer interface {
	Update(pipeline.Progress)
	Finish()
}

// newProgressRenderer draws a bar on terminals and throttled lines
// elsewhere.
func newProgressRenderer(w io.Writer, label string, interactive bool) progressRenderer {
	if interactive {
		return newBarRenderer(w, label)
	}
	return &lineRenderer{w: w, label: label, sometimes: rate.Sometimes{Interval: 2 * time.Second}}
}

type barRenderer struct {
	bar *progressbar.ProgressBar
}

func newBarRenderer(w io.Writer, label string) *barRenderer {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
	return &barRenderer{bar: bar}
}

func (r *barRenderer) Update(p pipeline.Progress) {
	if p.Message != "" {
		r.bar.Describe(p.Message)
	}
	_ = r.bar.Set(percent(p.Fraction))
}

func (r *barRenderer) Finish() {
	_ = r.bar.Finish()
}

type lineRenderer struct {
	w         io.Writer
	label     string
	sometimes rate.Sometimes
	last      pipeline.Progress
	seen      bool
}

func (r *lineRenderer) Update(p pipeline.Progress) {
	r.last, r.seen = p, true
	if p.Fraction >= 1 {
		return
	}
	r.sometimes.Do(func() { r.print(p) })
}

func (r *lineRenderer) Finish() {
	if r.seen {
		r.print(r.last)
	}
}

func (r *lineRenderer) print(p pipeline.Progress) {
	fmt.Fprintf(r.w, "%s: %3d%% %s\n", r.label, percent(p.Fraction), p.Message)
}

func percent(fraction float64) int {
	if math.IsNaN(fraction) || fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 100
	}
	return int(math.Round(fraction * 100))
}
