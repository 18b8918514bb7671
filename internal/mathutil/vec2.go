package mathutil

import "math"

// Vec2 is a 2-component float32 vector (value type, stack-allocated).
// float32 matches the on-disk precision of puppet geometry.
type Vec2 [2]float32

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// Cross returns the z-component of the 2D cross product a×b.
// Positive for a counter-clockwise turn from a to b (Y-up convention).
func (a Vec2) Cross(b Vec2) float32 {
	return a[0]*b[1] - a[1]*b[0]
}

func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1])))
}

// Vec3 is a 3-component float32 vector.
type Vec3 [3]float32

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}
