package physics

import "math"

// Vector3D is a world or body frame vector. Y is up.
type Vector3D struct {
	X float64
	Y float64
	Z float64
}

// Add returns the sum of two vectors
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns the difference between two vectors
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return Vector3D{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale multiplies every component by factor
func (v Vector3D) Scale(factor float64) Vector3D {
	return Vector3D{X: v.X * factor, Y: v.Y * factor, Z: v.Z * factor}
}

// Dot returns the dot product of two vectors
func (v Vector3D) Dot(other Vector3D) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the right-handed cross product v × other
func (v Vector3D) Cross(other Vector3D) Vector3D {
	return Vector3D{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// LengthSquared returns magnitude squared
func (v Vector3D) LengthSquared() float64 {
	return v.Dot(v)
}

// Length returns the magnitude of the vector
func (v Vector3D) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns a unit vector in the same direction, or the zero vector
func (v Vector3D) Normalize() Vector3D {
	length := v.Length()
	if length == 0 {
		return Vector3D{}
	}
	return v.Scale(1 / length)
}

// ClampLength rescales v to max when its magnitude exceeds max.
func (v Vector3D) ClampLength(max float64) Vector3D {
	if v.LengthSquared() > max*max {
		return v.Normalize().Scale(max)
	}
	return v
}

// Distance returns the distance between two points
func (v Vector3D) Distance(other Vector3D) float64 {
	return v.Sub(other).Length()
}

// Horizontal projects the vector onto the ground plane (X, Z).
func (v Vector3D) Horizontal() Vector2D {
	return Vector2D{X: v.X, Y: v.Z}
}
