package ffprobe

import "testing"

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{Index: 0, CodecType: "audio", CodecName: "aac"},
			{Index: 1, CodecType: "VIDEO", CodecName: "hevc", Width: 3840, Height: 2160},
			{Index: 2, CodecType: "video", CodecName: "mjpeg"},
			{Index: 3, CodecType: "audio", CodecName: "ac3"},
			{Index: 4, CodecType: "subtitle"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 2 {
		t.Fatalf("expected 2 video streams, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	video, ok := result.VideoStream()
	if !ok || video.Index != 1 || video.CodecName != "hevc" {
		t.Fatalf("expected the first video stream, got %+v", video)
	}
	if result.DurationSeconds() != 123.45 || result.SizeBytes() != 1000 || result.BitRate() != 32000 {
		t.Fatalf("unexpected format numbers: %v %d %d", result.DurationSeconds(), result.SizeBytes(), result.BitRate())
	}
}

func TestResultWithoutVideo(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio"}}}
	if _, ok := result.VideoStream(); ok {
		t.Fatal("expected no video stream")
	}
}

func TestResultNumbersFallBackToZero(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"empty", Format{}},
		{"garbage", Format{Duration: "bad", Size: "n/a", BitRate: "nope"}},
		{"negative", Format{Duration: "-1", Size: "-1", BitRate: "-5"}},
		{"infinite", Format{Duration: "inf", Size: "NaN", BitRate: "+Inf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Result{Format: tt.format}
			if result.DurationSeconds() != 0 || result.SizeBytes() != 0 || result.BitRate() != 0 {
				t.Fatalf("expected zeros, got %v %d %d", result.DurationSeconds(), result.SizeBytes(), result.BitRate())
			}
		})
	}
}
