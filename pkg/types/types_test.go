package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStatusFor tests the severity classification boundaries
func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected MeasurementStatus
	}{
		{name: "well below high", value: 45.2, expected: StatusNormal},
		{name: "exactly high threshold", value: 105.0, expected: StatusNormal},
		{name: "just above high threshold", value: 105.01, expected: StatusHigh},
		{name: "exactly critical threshold", value: 110.0, expected: StatusHigh},
		{name: "just above critical threshold", value: 110.01, expected: StatusCritical},
		{name: "far above critical", value: 250, expected: StatusCritical},
		{name: "negative value", value: -10, expected: StatusNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.value))
		})
	}
}

// TestSimulatedSignalReading tests value generation bounds and rounding
func TestSimulatedSignalReading(t *testing.T) {
	sig := SimulatedSignal{ID: "sig-1", Base: 45, Variance: 5}

	// uniform=0 maps to base-variance, uniform→1 maps to base+variance
	assert.Equal(t, 40.0, sig.Reading(0))
	assert.Equal(t, 45.0, sig.Reading(0.5))
	assert.Equal(t, 49.99, sig.Reading(0.999))

	// Rounded to two decimals
	v := sig.Reading(0.333)
	assert.InDelta(t, math.Round(v*100)/100, v, 1e-9)
	assert.GreaterOrEqual(t, v, 40.0)
	assert.Less(t, v, 50.0)
}

// TestAssetIsRoot tests root detection via nil parent
func TestAssetIsRoot(t *testing.T) {
	parent := "site-1"
	assert.True(t, (&Asset{ID: "site-1"}).IsRoot())
	assert.False(t, (&Asset{ID: "plant-1", ParentID: &parent}).IsRoot())
}
