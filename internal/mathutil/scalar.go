package mathutil

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InvLerp returns the fractional position of v within [a, b].
// Returns 0 when the span is empty.
func InvLerp(a, b, v float64) float64 {
	if b == a {
		return 0
	}
	return (v - a) / (b - a)
}
