package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func stubFFprobe(t *testing.T, mode string) *[]string {
	t.Helper()
	var captured []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append([]string{name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFPROBE_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &captured
}

func TestFrameCount(t *testing.T) {
	captured := stubFFprobe(t, "frames")

	frames, err := NewProber("").FrameCount(context.Background(), "/media/clip.mkv")
	if err != nil {
		t.Fatalf("FrameCount returned error: %v", err)
	}
	if frames != 1000 {
		t.Fatalf("frames = %d, want 1000", frames)
	}
	want := "ffprobe -v error -select_streams v:0 -count_packets -show_entries stream=nb_read_packets -of csv=p=0 -- /media/clip.mkv"
	if got := strings.Join(*captured, " "); got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestDuration(t *testing.T) {
	captured := stubFFprobe(t, "duration")

	seconds, err := NewProber("/opt/ffprobe").Duration(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Duration returned error: %v", err)
	}
	if seconds != 100.5 {
		t.Fatalf("duration = %v, want 100.5", seconds)
	}
	if (*captured)[0] != "/opt/ffprobe" {
		t.Fatalf("binary = %q, want /opt/ffprobe", (*captured)[0])
	}
}

func TestProberParseErrors(t *testing.T) {
	tests := []struct {
		name string
		mode string
		call func(*Prober) error
	}{
		{"frame count garbage", "garbage", func(p *Prober) error {
			_, err := p.FrameCount(context.Background(), "clip.mkv")
			return err
		}},
		{"frame count empty", "empty", func(p *Prober) error {
			_, err := p.FrameCount(context.Background(), "clip.mkv")
			return err
		}},
		{"duration N/A", "garbage", func(p *Prober) error {
			_, err := p.Duration(context.Background(), "clip.mkv")
			return err
		}},
		{"duration zero", "zero", func(p *Prober) error {
			_, err := p.Duration(context.Background(), "clip.mkv")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubFFprobe(t, tt.mode)
			err := tt.call(NewProber(""))
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestProberFailureIncludesStderr(t *testing.T) {
	stubFFprobe(t, "failure")

	_, err := NewProber("").Duration(context.Background(), "missing.mkv")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrParse) {
		t.Fatalf("non-zero exit should not be a parse error: %v", err)
	}
	if !strings.Contains(err.Error(), "No such file or directory") {
		t.Fatalf("expected stderr detail in %q", err)
	}
}

func TestProberRejectsEmptyInput(t *testing.T) {
	if _, err := NewProber("").FrameCount(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestInspectDecodesJSON(t *testing.T) {
	stubFFprobe(t, "inspect")

	result, err := Inspect(context.Background(), "", "clip.mkv")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	video, ok := result.VideoStream()
	if !ok || video.CodecName != "h264" || video.Width != 1920 {
		t.Fatalf("unexpected video stream %+v", video)
	}
	if result.DurationSeconds() != 100 {
		t.Fatalf("duration = %v, want 100", result.DurationSeconds())
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFPROBE_HELPER_MODE") {
	case "frames":
		fmt.Println("1000")
		os.Exit(0)
	case "duration":
		fmt.Println()
		fmt.Println("100.500000")
		os.Exit(0)
	case "garbage":
		fmt.Println("N/A")
		os.Exit(0)
	case "zero":
		fmt.Println("0.000000")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "missing.mkv: No such file or directory")
		os.Exit(1)
	case "inspect":
		fmt.Println(`{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":1920,"height":1080},{"index":1,"codec_name":"aac","codec_type":"audio","channels":2}],"format":{"filename":"clip.mkv","nb_streams":2,"duration":"100.000000","size":"52428800","bit_rate":"4194304","format_name":"matroska,webm"}}`)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
