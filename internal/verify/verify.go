package verify

import (
	"context"
	"errors"
	"fmt"
	"os"

	"audioscribe/internal/media/ffprobe"
)

// Verdict is the overall outcome of verifying one file.
type Verdict string

const (
	VerdictOK      Verdict = "ok"
	VerdictWarning Verdict = "warning"
	VerdictFailed  Verdict = "failed"
)

// Metrics holds the technical properties extracted from an audio file.
// Every field is optional: ffprobe may omit any of them, and a nil field is
// excluded from rule evaluation.
type Metrics struct {
	DurationSeconds *float64
	SizeBytes       *int64
	BitrateKbps     *int
	SampleRateHz    *int
	Channels        *int
	Codec           *string
}

// Result is the engine's output for one verification call.
type Result struct {
	Verdict  Verdict
	Metrics  Metrics
	Warnings []string
	Errors   []string
}

// OK reports whether the file passed every check without warnings.
func (r Result) OK() bool {
	return r.Verdict == VerdictOK
}

// Evaluate runs the rule set with the default thresholds.
func Evaluate(metrics Metrics) Result {
	return EvaluateAgainst(DefaultThresholds(), metrics)
}

// EvaluateAgainst runs the rule set against the provided metrics and derives
// the verdict. All rules are evaluated independently; a fatal violation does
// not suppress later rules.
func EvaluateAgainst(thresholds Thresholds, metrics Metrics) Result {
	var warnings, errs []string
	for _, rule := range ruleSet(thresholds) {
		message, violated := rule.check(metrics)
		if !violated {
			continue
		}
		switch rule.severity {
		case severityFatal:
			errs = append(errs, message)
		case severityWarning:
			warnings = append(warnings, message)
		}
	}
	return newResult(metrics, warnings, errs)
}

// Failure builds a failed Result for a verification call whose extraction step
// did not produce metrics at all (missing file, probe failure, bad output).
func Failure(reason string) Result {
	return newResult(Metrics{}, nil, []string{reason})
}

// newResult derives the verdict from the final warning and error lists. The
// verdict is never assigned anywhere else.
func newResult(metrics Metrics, warnings, errs []string) Result {
	verdict := VerdictOK
	switch {
	case len(errs) > 0:
		verdict = VerdictFailed
	case len(warnings) > 0:
		verdict = VerdictWarning
	}
	return Result{
		Verdict:  verdict,
		Metrics:  metrics,
		Warnings: warnings,
		Errors:   errs,
	}
}

// Inspector is the probe collaborator verification depends on.
type Inspector interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Verifier runs the verification engine against files on disk using an
// ffprobe-backed inspector.
type Verifier struct {
	inspector  Inspector
	thresholds Thresholds
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithThresholds overrides the default rule thresholds.
func WithThresholds(thresholds Thresholds) Option {
	return func(v *Verifier) {
		v.thresholds = thresholds
	}
}

// NewVerifier constructs a Verifier around the provided inspector.
func NewVerifier(inspector Inspector, opts ...Option) *Verifier {
	v := &Verifier{inspector: inspector, thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// File probes path and evaluates the verification rules over the extracted
// metrics. Extraction failures produce a failed Result with a single error
// naming the cause; the error return is reserved for programming mistakes
// such as a nil inspector.
func (v *Verifier) File(ctx context.Context, path string) (Result, error) {
	if v == nil || v.inspector == nil {
		return Result{}, errors.New("verify: inspector not configured")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Failure(fmt.Sprintf("File not found: %s", path)), nil
		}
		return Failure(fmt.Sprintf("File not accessible: %v", err)), nil
	}

	probed, err := v.inspector.Inspect(ctx, path)
	if err != nil {
		return Failure(probeFailureReason(err)), nil
	}

	return EvaluateAgainst(v.thresholds, MetricsFromProbe(probed)), nil
}

func probeFailureReason(err error) string {
	switch {
	case errors.Is(err, ffprobe.ErrDecode):
		return "Invalid JSON returned from ffprobe"
	case errors.Is(err, ffprobe.ErrExit):
		return fmt.Sprintf("ffprobe returned error: %v", err)
	default:
		return fmt.Sprintf("ffprobe execution failed: %v", err)
	}
}

// MetricsFromProbe applies the extraction policy to raw ffprobe output.
// Container-level duration, bitrate, and size that are absent or zero become
// nil; stream-level fields come from the first audio stream.
func MetricsFromProbe(probed ffprobe.Result) Metrics {
	var metrics Metrics

	if duration := probed.DurationSeconds(); duration > 0 {
		metrics.DurationSeconds = &duration
	}
	if rate := probed.BitRate(); rate > 0 {
		kbps := int(rate / 1000)
		metrics.BitrateKbps = &kbps
	}
	if size := probed.SizeBytes(); size > 0 {
		metrics.SizeBytes = &size
	}

	stream, ok := probed.FirstAudioStream()
	if !ok {
		return metrics
	}
	if rate := stream.SampleRateHz(); rate > 0 {
		metrics.SampleRateHz = &rate
	}
	if stream.Channels > 0 {
		channels := stream.Channels
		metrics.Channels = &channels
	}
	if stream.CodecName != "" {
		codec := stream.CodecName
		metrics.Codec = &codec
	}
	return metrics
}
