package ffmpeg

import (
	"os"
	"strconv"
	"strings"

	"compressr/internal/config"
)

// Request describes one pass of one attempt.
type Request struct {
	Input      string
	Output     string
	VideoCodec string
	AudioCodec string
	VideoKbps  float64
	AudioKbps  float64
	// Pass is 1 (analysis) or 2 (final output).
	Pass int
	// PassLogPrefix is shared by both passes of an attempt.
	PassLogPrefix string
}

// Args builds the ffmpeg arguments for req with progress written to channel
// ("stdout" or "stderr"). Pass 1 discards its output and audio; pass 2 writes
// the real file.
func Args(req Request, channel string) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// --- Progress ---
	args = append(args, "-progress", progressTarget(channel), "-nostats")

	// --- Input and video ---
	args = append(args,
		"-i", req.Input,
		"-c:v", req.VideoCodec,
		"-b:v", bitsPerSecond(req.VideoKbps),
		"-pass", strconv.Itoa(req.Pass),
	)
	if req.PassLogPrefix != "" {
		args = append(args, "-passlogfile", req.PassLogPrefix)
	}

	// --- Output ---
	if req.Pass == 1 {
		return append(args, "-fps_mode", "vfr", "-an", "-f", "null", os.DevNull)
	}
	return append(args,
		"-c:a", req.AudioCodec,
		"-b:a", bitsPerSecond(req.AudioKbps),
		req.Output,
	)
}

// bitsPerSecond renders a kbps figure with 1 kbit = 1024 bits.
func bitsPerSecond(kbps float64) string {
	if kbps < 0 {
		kbps = 0
	}
	return strconv.FormatInt(int64(kbps*1024), 10)
}

func progressTarget(channel string) string {
	if strings.EqualFold(strings.TrimSpace(channel), config.ChannelStderr) {
		return "pipe:2"
	}
	return "pipe:1"
}
