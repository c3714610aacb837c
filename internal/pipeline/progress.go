package pipeline

import (
	"context"
	"math"
	"sync"
)

// Stage names reported in Progress.
const (
	StageExtract = "extract"
	StageOCR     = "ocr"
	StageWrite   = "write"
)

// stageSpan is the slice of overall progress a stage covers.
type stageSpan struct {
	from, to float64
}

var stageSpans = map[string]stageSpan{
	StageExtract: {0, 0.10},
	StageOCR:     {0.10, 0.95},
	StageWrite:   {0.95, 1.0},
}

// Progress is one progress update.
type Progress struct {
	Stage string
	// StageFraction is the completed share of the current stage.
	StageFraction float64
	// Fraction is the completed share of the whole run. It never decreases
	// within a run.
	Fraction float64
	Message  string
}

// ProgressFunc receives progress updates on the run's goroutine.
type ProgressFunc func(Progress)

// reporter maps stage-local fractions onto overall progress and keeps the
// overall value monotonic.
type reporter struct {
	fn   ProgressFunc
	last float64
	hook func(Progress)
}

func (r *reporter) report(stage string, fraction float64, message string) {
	fraction = clamp01(fraction)
	span := stageSpans[stage]
	overall := clamp01(span.from + (span.to-span.from)*fraction)
	if overall < r.last {
		overall = r.last
	}
	r.last = overall
	p := Progress{Stage: stage, StageFraction: fraction, Fraction: overall, Message: message}
	if r.hook != nil {
		r.hook(p)
	}
	if r.fn != nil {
		r.fn(p)
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ProgressStream turns the synchronous callback into a channel so a
// separate goroutine can render updates. Sends block while the buffer is
// full unless the stream's context is done, in which case the update is
// dropped.
type ProgressStream struct {
	ctx     context.Context
	updates chan Progress
	mu      sync.Mutex
	closed  bool
}

// NewProgressStream creates a stream with the given buffer size.
func NewProgressStream(ctx context.Context, buffer int) *ProgressStream {
	if buffer < 0 {
		buffer = 0
	}
	return &ProgressStream{ctx: ctx, updates: make(chan Progress, buffer)}
}

// Func returns the callback to place in Request.Progress.
func (s *ProgressStream) Func() ProgressFunc {
	return s.send
}

// Updates returns the receive side of the stream. It is closed by Close.
func (s *ProgressStream) Updates() <-chan Progress {
	return s.updates
}

func (s *ProgressStream) send(p Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.updates <- p:
	case <-s.ctx.Done():
	}
}

// Close ends the stream. It must be called once the producing run has
// returned; later updates are discarded.
func (s *ProgressStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}
