package valuation

import (
	"errors"
	"fmt"
)

// MissingMetricError reports a required input field that was absent
// from the fetched metrics. The affected ticker is skipped, never the
// whole batch.
type MissingMetricError struct {
	Field string
}

func (e MissingMetricError) Error() string {
	return fmt.Sprintf("missing required metric: %s", e.Field)
}

// DegenerateWACCError reports a cost of capital at or below the
// terminal growth rate, for which the terminal value is undefined.
type DegenerateWACCError struct {
	WACC           float64
	TerminalGrowth float64
}

func (e DegenerateWACCError) Error() string {
	return fmt.Sprintf("degenerate WACC: %.4f <= terminal growth %.4f", e.WACC, e.TerminalGrowth)
}

// SkipReason converts an analysis error into the machine-readable
// reason recorded for the skipped ticker.
func SkipReason(err error) string {
	var missing MissingMetricError
	if errors.As(err, &missing) {
		return "missing_metric:" + missing.Field
	}
	var degenerate DegenerateWACCError
	if errors.As(err, &degenerate) {
		return "degenerate_wacc"
	}
	return "analysis_failed"
}
