package physics

import "math"

// Clamp limits value to [min, max]. Values outside the range saturate;
// they never wrap. NaN is treated as zero before clamping.
func Clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		value = 0
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampUnit limits value to [-1, 1].
func ClampUnit(value float64) float64 {
	return Clamp(value, -1, 1)
}
