package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncode()
	c.normalizeProgress()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncode() {
	c.Encode.Codec = strings.ToLower(strings.TrimSpace(c.Encode.Codec))
	switch c.Encode.Codec {
	case "":
		c.Encode.Codec = defaultCodec
	case "x264", "avc":
		c.Encode.Codec = CodecH264
	case "x265", "hevc":
		c.Encode.Codec = CodecH265
	}
	c.Encode.GPU = strings.ToLower(strings.TrimSpace(c.Encode.GPU))
	if c.Encode.GPU == "" {
		c.Encode.GPU = defaultGPU
	}
}

func (c *Config) normalizeProgress() {
	c.Progress.Mode = strings.ToLower(strings.TrimSpace(c.Progress.Mode))
	if c.Progress.Mode == "" {
		c.Progress.Mode = defaultProgressMode
	}
	c.Progress.Channel = strings.ToLower(strings.TrimSpace(c.Progress.Channel))
	if c.Progress.Channel == "" {
		c.Progress.Channel = defaultProgressChannel
	}
	if c.Progress.BarWidth <= 0 {
		c.Progress.BarWidth = defaultBarWidth
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
