package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"compressr/internal/config"
	"compressr/internal/logging"
	"compressr/internal/services"
)

// encodeOverrides holds flag values that replace config settings when the
// flag is set explicitly.
type encodeOverrides struct {
	sizeMB          float64
	codec           string
	gpu             string
	audioBitrate    float64
	maxAttempts     int
	progressMode    string
	progressChannel string
	deleteOriginal  bool
}

func (o *encodeOverrides) register(flags *pflag.FlagSet) {
	flags.Float64VarP(&o.sizeMB, "size", "s", 0, "Target size in MB (overrides encode.size_mb)")
	flags.StringVar(&o.codec, "codec", "", "Video codec: h264, h265, av1 or vp9")
	flags.StringVar(&o.gpu, "gpu", "", "Hardware encoder vendor: none, amd, intel or nvidia")
	flags.Float64Var(&o.audioBitrate, "audio-bitrate", 0, "Audio bitrate in kbps")
	flags.IntVar(&o.maxAttempts, "max-attempts", 0, "Attempt cap, 0 for unbounded")
	flags.StringVar(&o.progressMode, "progress-mode", "", "Progress display: parse or passthrough")
	flags.StringVar(&o.progressChannel, "progress-channel", "", "Stream carrying ffmpeg progress: stdout or stderr")
	flags.BoolVar(&o.deleteOriginal, "delete-original", false, "Delete the input once the output fits")
}

func (o *encodeOverrides) apply(cfg *config.Config, flags *pflag.FlagSet) {
	if flags == nil {
		return
	}
	if flags.Changed("size") {
		cfg.Encode.SizeMB = o.sizeMB
	}
	if flags.Changed("codec") {
		cfg.Encode.Codec = o.codec
	}
	if flags.Changed("gpu") {
		cfg.Encode.GPU = o.gpu
	}
	if flags.Changed("audio-bitrate") {
		cfg.Encode.AudioBitrate = o.audioBitrate
	}
	if flags.Changed("max-attempts") {
		cfg.Encode.MaxAttempts = o.maxAttempts
	}
	if flags.Changed("progress-mode") {
		cfg.Progress.Mode = o.progressMode
	}
	if flags.Changed("progress-channel") {
		cfg.Progress.Channel = o.progressChannel
	}
	if flags.Changed("delete-original") {
		cfg.Encode.DeleteOriginal = o.deleteOriginal
	}
}

type commandContext struct {
	configFlag *string
	overrides  *encodeOverrides
	flags      *pflag.FlagSet

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, overrides *encodeOverrides, flags *pflag.FlagSet) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		overrides:  overrides,
		flags:      flags,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", resolved, err)
			return
		}
		if c.overrides != nil {
			c.overrides.apply(cfg, c.flags)
			if err := cfg.Finalize(); err != nil {
				c.configErr = services.Wrap(services.ErrConfiguration, "config", "flags", "", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrFilesystem, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// loggerFor returns the process logger, building it from config on first use.
func (c *commandContext) loggerFor(cfg *config.Config) (*slog.Logger, error) {
	var err error
	c.loggerOnce.Do(func() {
		var logger *slog.Logger
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			err = services.Wrap(services.ErrConfiguration, "config", "logging", "", err)
			return
		}
		c.logger = logger
	})
	if err != nil {
		return nil, err
	}
	if c.logger == nil {
		return nil, fmt.Errorf("logger unavailable")
	}
	return c.logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
