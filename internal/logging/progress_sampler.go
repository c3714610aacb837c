package logging

import (
	"math"
	"strings"
)

// ProgressSampler keeps per-frame progress from flooding the log. It lets a
// record through when the stage changes, when the overall fraction enters a
// new bucket, and once when the run completes.
type ProgressSampler struct {
	bucket     float64
	lastStage  string
	lastBucket int
	finished   bool
}

// NewProgressSampler constructs a sampler with buckets of the given width on
// the 0-1 fraction scale. Non-positive or non-finite widths default to 0.05.
func NewProgressSampler(bucket float64) *ProgressSampler {
	if bucket <= 0 || math.IsNaN(bucket) || math.IsInf(bucket, 0) || bucket > 1 {
		bucket = 0.05
	}
	return &ProgressSampler{bucket: bucket, lastBucket: -1}
}

// ShouldLog reports whether a progress update should be logged. A negative
// or NaN fraction means unknown and only counts as a stage change.
func (s *ProgressSampler) ShouldLog(stage string, fraction float64) bool {
	if s == nil {
		return true
	}
	stage = strings.TrimSpace(stage)
	emit := false
	if stage != "" && stage != s.lastStage {
		s.lastStage = stage
		s.lastBucket = -1
		emit = true
	}
	if math.IsNaN(fraction) || fraction < 0 {
		return emit
	}
	if fraction >= 1 {
		if !s.finished {
			s.finished = true
			emit = true
		}
		return emit
	}
	if b := int(fraction / s.bucket); b > s.lastBucket {
		s.lastBucket = b
		emit = true
	}
	return emit
}

// Reset clears the sampler state before it is reused for another run.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	*s = ProgressSampler{bucket: s.bucket, lastBucket: -1}
}
