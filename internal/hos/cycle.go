// Package hos derives the display state of the hours-of-service cycle-hours
// control. It performs no compliance calculation; the figure is whatever the
// driver entered.
package hos

import (
	"math"

	"github.com/pkordes/eldplan/internal/domain"
)

// Severity is the tri-state treatment of a cycle-hours value.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Thresholds in percent of the cycle maximum.
const (
	warningPercent  = 75
	criticalPercent = 90
)

// Advisories shown for the warning and critical severities. They do not vary
// with the value.
const (
	WarningAdvisory  = "You are approaching your cycle limit. Plan your remaining on-duty time carefully."
	CriticalAdvisory = "You are at or near your cycle limit. A 34-hour restart may be required before your next trip."
)

// Presets are the quick-set values offered next to the slider.
var Presets = []float64{0, 20, 35, 50, 60, 70}

// Status is everything the control renders for one value.
type Status struct {
	Hours     float64  `json:"hours"`
	Max       float64  `json:"max"`
	Remaining float64  `json:"remaining"`
	Percent   float64  `json:"percent"`
	Severity  Severity `json:"severity"`
	Treatment string   `json:"treatment"`
	Advisory  string   `json:"advisory,omitempty"`
}

// Clamp bounds v to [0, max]. A non-positive max selects domain.MaxCycleHours.
// NaN clamps to 0.
func Clamp(v, max float64) float64 {
	if max <= 0 {
		max = domain.MaxCycleHours
	}
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > max:
		return max
	}
	return v
}

// Classify clamps v and derives its severity, colour treatment and advisory.
func Classify(v, max float64) Status {
	if max <= 0 {
		max = domain.MaxCycleHours
	}
	v = Clamp(v, max)

	st := Status{
		Hours:     v,
		Max:       max,
		Remaining: max - v,
		Percent:   v / max * 100,
	}

	// Scale both sides to avoid float drift at the exact boundaries
	// (52.5 of 70 must land on warning, 63 of 70 on critical).
	switch scaled := v * 100; {
	case scaled >= max*criticalPercent:
		st.Severity = SeverityCritical
		st.Treatment = "#EF4444"
		st.Advisory = CriticalAdvisory
	case scaled >= max*warningPercent:
		st.Severity = SeverityWarning
		st.Treatment = "#F59E0B"
		st.Advisory = WarningAdvisory
	default:
		st.Severity = SeverityNormal
		st.Treatment = "#22C55E"
	}
	return st
}
