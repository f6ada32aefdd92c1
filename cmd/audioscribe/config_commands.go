package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"audioscribe/internal/config"
	"audioscribe/internal/deps"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigCheckCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point output_dir and library_dir where you want audio stored.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "output_dir:       %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "library_dir:      %s\n", cfg.Paths.LibraryDir)
			fmt.Fprintf(out, "log_dir:          %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "data_dir:         %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "database:         %s\n", cfg.DatabasePath())
			fmt.Fprintf(out, "ytdlp_binary:     %s\n", cfg.Tools.YtDlpBinary)
			fmt.Fprintf(out, "ffprobe_binary:   %s\n", cfg.Tools.FFprobeBinary)
			fmt.Fprintf(out, "download_timeout: %ds\n", cfg.Tools.DownloadTimeout)
			fmt.Fprintf(out, "probe_timeout:    %ds\n", cfg.Tools.ProbeTimeout)
			fmt.Fprintf(out, "min_duration:     %.2fs\n", cfg.Verify.MinDurationSeconds)
			fmt.Fprintf(out, "min_bitrate:      %d kbps\n", cfg.Verify.MinBitrateKbps)
			fmt.Fprintf(out, "strict:           %s\n", yesNo(cfg.Verify.Strict))
			fmt.Fprintf(out, "log_format:       %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "log_level:        %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

func newConfigCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and external dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("configuration", statusOK, "valid", colorize))

			failed := false
			statuses := deps.CheckBinaries(deps.Required(cfg.Tools.YtDlpBinary, cfg.Tools.FFprobeBinary))
			for _, status := range statuses {
				kind := statusOK
				message := status.Command
				if !status.Available {
					kind = statusError
					message = status.Detail
					failed = true
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}
			if failed {
				return fmt.Errorf("dependency check failed")
			}
			return nil
		},
	}
}
