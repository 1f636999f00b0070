package config

const (
	defaultConfigPath      = "~/.config/compressr/config.toml"
	defaultLogDir          = "~/.local/share/compressr/logs"
	defaultStateDir        = "~/.local/share/compressr"
	defaultCodec           = CodecH264
	defaultGPU             = GPUNone
	defaultSizeMB          = 25.0
	defaultAudioBitrate    = 240.0
	defaultMaxAttempts     = 0
	defaultProgressMode    = ProgressModeParse
	defaultProgressChannel = ChannelStdout
	defaultBarWidth        = 16
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Codec names accepted by encode.codec.
const (
	CodecH264 = "h264"
	CodecH265 = "h265"
	CodecAV1  = "av1"
	CodecVP9  = "vp9"
)

// GPU vendors accepted by encode.gpu.
const (
	GPUNone   = "none"
	GPUAMD    = "amd"
	GPUIntel  = "intel"
	GPUNvidia = "nvidia"
)

// Progress interpreter modes.
const (
	ProgressModeParse       = "parse"
	ProgressModePassthrough = "passthrough"
)

// Progress channels.
const (
	ChannelStdout = "stdout"
	ChannelStderr = "stderr"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Encode: Encode{
			Codec:        defaultCodec,
			GPU:          defaultGPU,
			SizeMB:       defaultSizeMB,
			AudioBitrate: defaultAudioBitrate,
			MaxAttempts:  defaultMaxAttempts,
		},
		Progress: Progress{
			Mode:     defaultProgressMode,
			Channel:  defaultProgressChannel,
			BarWidth: defaultBarWidth,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
