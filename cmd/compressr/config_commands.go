package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"compressr/internal/config"
	"compressr/internal/encoding"
	"compressr/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "init", "resolve path", err)
			}
			if !overwrite {
				switch _, statErr := os.Stat(target); {
				case statErr == nil:
					return services.Wrap(services.ErrValidation, "config", "init",
						target+" exists, pass --overwrite to replace it", nil)
				case !errors.Is(statErr, fs.ErrNotExist):
					return services.Wrap(services.ErrFilesystem, "config", "init", target, statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return services.Wrap(services.ErrFilesystem, "config", "init", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: the standard config location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget resolves the destination for config init. An empty flag means
// the default config location.
func initTarget(flagValue string) (string, error) {
	if flagValue = strings.TrimSpace(flagValue); flagValue == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(flagValue)
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and print the resolved target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.configExists {
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			} else {
				fmt.Fprintf(out, "Config path: %s (not found, defaults used)\n", ctx.configPath)
			}
			fmt.Fprintf(out, "Target: %s MB %s (gpu %s), audio %.0f kbps\n",
				encoding.FormatSizeMB(cfg.Encode.SizeMB),
				cfg.Encode.Codec, cfg.Encode.GPU, cfg.Encode.AudioBitrate)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
