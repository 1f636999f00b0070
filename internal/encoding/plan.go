package encoding

import (
	"path/filepath"
	"strconv"
	"strings"
)

// kbitsPerMB converts megabytes to kilobits with 1 MB = 1024 KB = 8192 kbit.
const kbitsPerMB = 8192

// Bitrates holds the per-stream targets in kbps.
type Bitrates struct {
	VideoKbps float64
	AudioKbps float64
}

// InitialBitrates splits the size budget over the duration. When the audio
// target alone exceeds the budget the video bitrate would go negative; in
// that case audio absorbs the deficit and video gets the whole budget rate.
func InitialBitrates(sizeMB, durationSeconds, audioKbps float64) Bitrates {
	total := sizeMB * kbitsPerMB / durationSeconds
	video := total - audioKbps
	if video < 0 {
		return Bitrates{VideoKbps: total, AudioKbps: audioKbps - video}
	}
	return Bitrates{VideoKbps: video, AudioKbps: audioKbps}
}

// OutputPath places "<size>mb <stem>.<ext>" next to input.
func OutputPath(input string, sizeMB float64, ext string) string {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	name := FormatSizeMB(sizeMB) + "mb " + stem + "." + ext
	return filepath.Join(dir, name)
}

// FormatSizeMB renders a size without trailing zeros: 25, 7.5, 0.25.
func FormatSizeMB(sizeMB float64) string {
	return strconv.FormatFloat(sizeMB, 'f', -1, 64)
}
