// ABOUTME: Temperature to playback tempo control law
// ABOUTME: Warmer evenings speed the chorus up, cooler ones slow it down
package tempo

// Baseline is the temperature (°F) at which the law's offset term is zero.
const Baseline = 50.0

// offset keeps the denominator well away from zero for realistic temperatures.
const offset = 15.0

// MinReference is the bound a reference temperature must stay above; at it
// the law divides by zero and below it the law runs backwards.
const MinReference = Baseline - offset

// SpeedFactor maps temperature to a playback speed multiplier such that
// SpeedFactor(reference, reference) == 1. The result is not clamped; the render
// pipeline enforces its own floor.
func SpeedFactor(temperature, reference float64) float64 {
	return (offset + (temperature - Baseline)) / (offset + (reference - Baseline))
}

// Law binds the reference temperature so callers only supply readings.
type Law struct {
	Reference float64
}

// Factor is SpeedFactor with the bound reference.
func (l Law) Factor(temperature float64) float64 {
	return SpeedFactor(temperature, l.Reference)
}
