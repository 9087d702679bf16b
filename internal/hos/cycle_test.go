package hos_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/eldplan/internal/hos"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		hours float64
		want  hos.Severity
	}{
		{0, hos.SeverityNormal},
		{52.4, hos.SeverityNormal},
		{52.5, hos.SeverityWarning}, // exactly 75%
		{62.9, hos.SeverityWarning},
		{63, hos.SeverityCritical}, // exactly 90%
		{70, hos.SeverityCritical},
	}
	for _, tc := range cases {
		got := hos.Classify(tc.hours, 70)
		assert.Equal(t, tc.want, got.Severity, "hours=%v", tc.hours)
	}
}

func TestClassify_AdvisoryOnlyAboveNormal(t *testing.T) {
	assert.Empty(t, hos.Classify(10, 70).Advisory)
	assert.NotEmpty(t, hos.Classify(55, 70).Advisory)
	assert.NotEmpty(t, hos.Classify(68, 70).Advisory)
}

func TestClassify_AdvisoryTextIsFixed(t *testing.T) {
	for _, v := range []float64{52.5, 55, 62.9} {
		assert.Equal(t, hos.WarningAdvisory, hos.Classify(v, 70).Advisory, "v=%v", v)
	}
	for _, v := range []float64{63, 66.5, 70} {
		assert.Equal(t, hos.CriticalAdvisory, hos.Classify(v, 70).Advisory, "v=%v", v)
	}
	// The text does not depend on the cycle maximum either.
	assert.Equal(t, hos.CriticalAdvisory, hos.Classify(59, 60).Advisory)
	assert.NotContains(t, hos.CriticalAdvisory, "7.0")
}

func TestClassify_DefaultMax(t *testing.T) {
	st := hos.Classify(35, 0)
	assert.Equal(t, 70.0, st.Max)
	assert.Equal(t, 35.0, st.Remaining)
	assert.InDelta(t, 50.0, st.Percent, 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, hos.Clamp(-3, 70))
	assert.Equal(t, 70.0, hos.Clamp(99, 70))
	assert.Equal(t, 0.0, hos.Clamp(math.NaN(), 70))
	assert.Equal(t, 12.5, hos.Clamp(12.5, 0))
}

func TestPresets_WithinRange(t *testing.T) {
	for _, p := range hos.Presets {
		assert.Equal(t, p, hos.Clamp(p, 70))
	}
}
