package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"audioscribe/internal/config"
	"audioscribe/internal/media/ffprobe"
	"audioscribe/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var strict bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "verify FILE [FILE...]",
		Short: "Verify audio files on disk without queueing them",
		Long: `Verify probes each file with ffprobe and evaluates the quality rules.
The exit code reflects the worst verdict: 0 ok, 1 warning, 2 failed.
With --strict, warnings count as failures.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			verifier := verify.NewVerifier(
				ffprobe.NewProber(cfg.Tools.FFprobeBinary),
				verify.WithThresholds(cfg.Verify.Thresholds()),
			)
			return runVerify(cmd, cfg, verifier, args, strict, asJSON)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warning verdicts as failures")
	addJSONFlag(cmd, &asJSON)
	return cmd
}

type fileReport struct {
	File     string   `json:"file"`
	Verdict  string   `json:"verdict"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`

	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	BitrateKbps     *int     `json:"bitrate_kbps,omitempty"`
	SampleRateHz    *int     `json:"sample_rate_hz,omitempty"`
	Channels        *int     `json:"channels,omitempty"`
	Codec           *string  `json:"codec,omitempty"`
	SizeBytes       *int64   `json:"size_bytes,omitempty"`
}

func runVerify(cmd *cobra.Command, cfg *config.Config, verifier *verify.Verifier, files []string, strict, asJSON bool) error {
	reports := make([]fileReport, 0, len(files))
	worst := verify.VerdictOK

	for _, file := range files {
		path, err := config.ExpandPath(file)
		if err != nil {
			return err
		}
		result, err := verifier.File(cmd.Context(), path)
		if err != nil {
			return err
		}

		verdict := result.Verdict
		if strict && verdict == verify.VerdictWarning {
			verdict = verify.VerdictFailed
		}
		worst = worstVerdict(worst, verdict)

		reports = append(reports, fileReport{
			File:            path,
			Verdict:         string(verdict),
			Warnings:        result.Warnings,
			Errors:          result.Errors,
			DurationSeconds: result.Metrics.DurationSeconds,
			BitrateKbps:     result.Metrics.BitrateKbps,
			SampleRateHz:    result.Metrics.SampleRateHz,
			Channels:        result.Metrics.Channels,
			Codec:           result.Metrics.Codec,
			SizeBytes:       result.Metrics.SizeBytes,
		})
	}

	if asJSON {
		if err := writeJSON(cmd, reports); err != nil {
			return err
		}
	} else {
		printReports(cmd.OutOrStdout(), reports)
	}

	switch worst {
	case verify.VerdictFailed:
		return &exitCodeError{code: 2}
	case verify.VerdictWarning:
		return &exitCodeError{code: 1}
	default:
		return nil
	}
}

func printReports(out io.Writer, reports []fileReport) {
	colorize := shouldColorize(out)
	for _, report := range reports {
		kind := statusOK
		switch report.Verdict {
		case string(verify.VerdictWarning):
			kind = statusWarn
		case string(verify.VerdictFailed):
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(report.File, kind, strings.ToUpper(report.Verdict), colorize))
		for _, warning := range report.Warnings {
			fmt.Fprintf(out, "%s  warning: %s\n", statusIndent, warning)
		}
		for _, failure := range report.Errors {
			fmt.Fprintf(out, "%s  error: %s\n", statusIndent, failure)
		}
		if report.DurationSeconds != nil {
			fmt.Fprintf(out, "%s  duration: %.2fs", statusIndent, *report.DurationSeconds)
			if report.BitrateKbps != nil {
				fmt.Fprintf(out, "  bitrate: %d kbps", *report.BitrateKbps)
			}
			if report.Codec != nil {
				fmt.Fprintf(out, "  codec: %s", *report.Codec)
			}
			fmt.Fprintln(out)
		}
	}
}
