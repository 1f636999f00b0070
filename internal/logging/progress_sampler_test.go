package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize int
		wantSize   int
	}{
		{"default for zero", 0, DefaultProgressBucket},
		{"default for negative", -1, DefaultProgressBucket},
		{"default above 100", 150, DefaultProgressBucket},
		{"custom", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %d, want %d", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNilLogsEverything(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "1/2") {
		t.Error("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent int
		want    bool
	}{
		{0, true},
		{3, false},
		{9, false},
		{10, true},
		{15, false},
		{40, true},
		{100, true},
		{120, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.percent, "1/2"); got != step.want {
			t.Fatalf("ShouldLog(%d) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerPassChangeResetsBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(90, "1/2")
	if !s.ShouldLog(5, "2/2") {
		t.Fatal("new pass should log")
	}
	if !s.ShouldLog(10, "2/2") {
		t.Fatal("10% of new pass should log after reset")
	}
	if s.ShouldLog(10, " 2/2 ") {
		t.Fatal("pass label should be trimmed before comparison")
	}
}

func TestProgressSamplerNegativePercent(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(-1, "1/2") {
		t.Fatal("first record for a pass should log")
	}
	if s.ShouldLog(-1, "1/2") {
		t.Fatal("unknown percent should not advance buckets")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(50, "1/2")
	s.Reset()
	if s.lastPass != "" || s.lastBucket != -1 {
		t.Fatalf("reset left state %q/%d", s.lastPass, s.lastBucket)
	}
	if !s.ShouldLog(50, "1/2") {
		t.Fatal("should log after reset")
	}
}
