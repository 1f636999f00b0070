package ffmpeg

import (
	"fmt"
	"strings"

	"compressr/internal/config"
	"compressr/internal/services"
)

// Codecs names the encoders and container for one codec/GPU pairing.
type Codecs struct {
	Video     string
	Audio     string
	Extension string
}

type codecFamily struct {
	byGPU     map[string]string
	software  string
	audio     string
	extension string
}

var codecFamilies = map[string]codecFamily{
	config.CodecH264: {
		byGPU: map[string]string{
			config.GPUAMD:    "h264_amf",
			config.GPUIntel:  "h264_qsv",
			config.GPUNvidia: "h264_nvenc",
		},
		software:  "libx264",
		audio:     "aac",
		extension: "mp4",
	},
	config.CodecH265: {
		byGPU: map[string]string{
			config.GPUAMD:    "hevc_amf",
			config.GPUIntel:  "hevc_qsv",
			config.GPUNvidia: "hevc_nvenc",
		},
		software:  "libx265",
		audio:     "aac",
		extension: "mp4",
	},
	config.CodecAV1: {
		byGPU: map[string]string{
			config.GPUAMD:    "av1_amf",
			config.GPUIntel:  "av1_qsv",
			config.GPUNvidia: "av1_nvenc",
		},
		software:  "libaom-av1",
		audio:     "aac",
		extension: "mkv",
	},
	// Only Intel ships a hardware VP9 encoder in ffmpeg.
	config.CodecVP9: {
		byGPU: map[string]string{
			config.GPUIntel: "vp9_qsv",
		},
		software:  "libvpx-vp9",
		audio:     "libopus",
		extension: "webm",
	},
}

// ResolveCodecs returns the encoders for codec on gpu. Vendors without a
// hardware encoder for the codec fall back to the software encoder.
func ResolveCodecs(codec, gpu string) (Codecs, error) {
	codec = strings.ToLower(strings.TrimSpace(codec))
	gpu = strings.ToLower(strings.TrimSpace(gpu))
	if codec == "" {
		codec = config.CodecH264
	}
	family, ok := codecFamilies[codec]
	if !ok {
		return Codecs{}, services.Wrap(services.ErrConfiguration, "encode", "resolve codecs", fmt.Sprintf("unsupported codec %q", codec), nil)
	}
	switch gpu {
	case "", config.GPUNone, config.GPUAMD, config.GPUIntel, config.GPUNvidia:
	default:
		return Codecs{}, services.Wrap(services.ErrConfiguration, "encode", "resolve codecs", fmt.Sprintf("unsupported gpu %q", gpu), nil)
	}
	video, ok := family.byGPU[gpu]
	if !ok {
		video = family.software
	}
	return Codecs{Video: video, Audio: family.audio, Extension: family.extension}, nil
}
