// ABOUTME: Tests for the temperature tempo law
// ABOUTME: Checks the reference identity and known values
package tempo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceIsUnity(t *testing.T) {
	for _, ref := range []float64{40, 55.5, 64, 80, 101} {
		assert.Equal(t, 1.0, SpeedFactor(ref, ref), "reference %v", ref)
	}
}

func TestKnownValues(t *testing.T) {
	tests := []struct {
		temp, ref, want float64
	}{
		{50, 64, 15.0 / 29.0},
		{78, 64, 43.0 / 29.0},
		{35, 64, 0},
		{30, 64, -5.0 / 29.0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, SpeedFactor(tt.temp, tt.ref), 1e-12, "temp=%v ref=%v", tt.temp, tt.ref)
	}
	assert.InDelta(t, 0.5172, SpeedFactor(50, 64), 1e-4)
}

func TestMonotonic(t *testing.T) {
	prev := SpeedFactor(20, 64)
	for temp := 21.0; temp <= 110; temp++ {
		cur := SpeedFactor(temp, 64)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestLaw(t *testing.T) {
	l := Law{Reference: 64}
	assert.Equal(t, 1.0, l.Factor(64))
	assert.Equal(t, SpeedFactor(70, 64), l.Factor(70))
}

func TestMinReference(t *testing.T) {
	assert.Equal(t, 35.0, MinReference)
	assert.True(t, math.IsInf(SpeedFactor(70, MinReference), 1))
	assert.True(t, math.IsNaN(SpeedFactor(MinReference, MinReference)))
	assert.Less(t, SpeedFactor(70, MinReference-1), 0.0)
}
