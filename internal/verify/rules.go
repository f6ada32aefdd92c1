package verify

import "fmt"

type severity int

const (
	severityWarning severity = iota
	severityFatal
)

// Default quality thresholds. Duration below the minimum indicates a bogus or
// truncated download; bitrate below the minimum is usable but flagged.
const (
	MinDurationSeconds = 5.0
	MinBitrateKbps     = 96
)

// Thresholds are the tunable limits the rule set enforces.
type Thresholds struct {
	MinDurationSeconds float64
	MinBitrateKbps     int
}

// DefaultThresholds returns the limits used when configuration does not
// override them.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinDurationSeconds: MinDurationSeconds,
		MinBitrateKbps:     MinBitrateKbps,
	}
}

// rule is one independent verification check. check returns the violation
// message and whether the rule fired; rules with missing inputs do not fire.
type rule struct {
	name     string
	severity severity
	check    func(Metrics) (string, bool)
}

// ruleSet builds the checks evaluated in order by EvaluateAgainst. Adding a
// rule here never requires touching the verdict derivation.
func ruleSet(thresholds Thresholds) []rule {
	return []rule{
		{
			name:     "duration-valid",
			severity: severityFatal,
			check: func(m Metrics) (string, bool) {
				if m.DurationSeconds == nil || *m.DurationSeconds <= 0 {
					return "Invalid or zero duration", true
				}
				if *m.DurationSeconds < thresholds.MinDurationSeconds {
					return fmt.Sprintf("Duration too short: %.2fs < %.2fs", *m.DurationSeconds, thresholds.MinDurationSeconds), true
				}
				return "", false
			},
		},
		{
			name:     "bitrate-quality",
			severity: severityWarning,
			check: func(m Metrics) (string, bool) {
				if m.BitrateKbps != nil && *m.BitrateKbps < thresholds.MinBitrateKbps {
					return fmt.Sprintf("Low bitrate: %d kbps < %d kbps", *m.BitrateKbps, thresholds.MinBitrateKbps), true
				}
				return "", false
			},
		},
	}
}
