package logging

import "strings"

// DefaultProgressBucket is the percent step between sampled progress records.
const DefaultProgressBucket = 10

// ProgressSampler thins per-frame progress into one log record per percent
// bucket. Moving to a new pass label starts the buckets over.
type ProgressSampler struct {
	bucketSize int
	lastPass   string
	lastBucket int
}

// NewProgressSampler constructs a sampler; sizes outside 1..100 fall back to
// DefaultProgressBucket.
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 || bucketSize > 100 {
		bucketSize = DefaultProgressBucket
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress record for percent within pass should
// be emitted. A nil sampler logs everything.
func (s *ProgressSampler) ShouldLog(percent int, pass string) bool {
	if s == nil {
		return true
	}
	pass = strings.TrimSpace(pass)
	emit := false
	if pass != s.lastPass {
		s.lastPass = pass
		s.lastBucket = -1
		emit = true
	}
	if percent < 0 {
		return emit
	}
	if percent > 100 {
		percent = 100
	}
	if bucket := percent / s.bucketSize; bucket > s.lastBucket {
		s.lastBucket = bucket
		emit = true
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastPass = ""
	s.lastBucket = -1
}
