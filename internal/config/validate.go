package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (want debug, info, warn or error)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateEncode() error {
	switch c.Encode.Codec {
	case CodecH264, CodecH265, CodecAV1, CodecVP9:
	default:
		return fmt.Errorf("encode.codec: unsupported value %q (want h264, h265, av1 or vp9)", c.Encode.Codec)
	}
	switch c.Encode.GPU {
	case GPUNone, GPUAMD, GPUIntel, GPUNvidia:
	default:
		return fmt.Errorf("encode.gpu: unsupported value %q (want none, amd, intel or nvidia)", c.Encode.GPU)
	}
	if math.IsNaN(c.Encode.SizeMB) || math.IsInf(c.Encode.SizeMB, 0) || c.Encode.SizeMB <= 0 {
		return errors.New("encode.size_mb must be positive")
	}
	if math.IsNaN(c.Encode.AudioBitrate) || math.IsInf(c.Encode.AudioBitrate, 0) || c.Encode.AudioBitrate < 0 {
		return errors.New("encode.audio_bitrate must be >= 0")
	}
	if c.Encode.MaxAttempts < 0 {
		return errors.New("encode.max_attempts must be >= 0 (0 means unbounded)")
	}
	return nil
}

func (c *Config) validateProgress() error {
	switch c.Progress.Mode {
	case ProgressModeParse, ProgressModePassthrough:
	default:
		return fmt.Errorf("progress.mode: unsupported value %q (want parse or passthrough)", c.Progress.Mode)
	}
	switch c.Progress.Channel {
	case ChannelStdout, ChannelStderr:
	default:
		return fmt.Errorf("progress.channel: unsupported value %q (want stdout or stderr)", c.Progress.Channel)
	}
	return nil
}
