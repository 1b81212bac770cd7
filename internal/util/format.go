package util //nolint:revive // package name util hosts shared formatting helpers for CLI output

import "time"

// FormatProcessingDuration renders a duration for operator-facing output.
// Zero or negative durations print as "—"; anything of a millisecond or
// more is truncated to milliseconds.
func FormatProcessingDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "—"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Truncate(time.Millisecond).String()
	}
}
