// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec3AlmostEqual(a, b Vector3D) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.Z, b.Z)
}

func TestVector2D_Arithmetic(t *testing.T) {
	a := Vector2D{X: 3, Y: 4}
	b := Vector2D{X: 1, Y: 2}

	if got := a.Add(b); got != (Vector2D{X: 4, Y: 6}) {
		t.Errorf("Add() = %v", got)
	}
	if got := a.Sub(b); got != (Vector2D{X: 2, Y: 2}) {
		t.Errorf("Sub() = %v", got)
	}
	if got := a.Scale(2); got != (Vector2D{X: 6, Y: 8}) {
		t.Errorf("Scale() = %v", got)
	}
	if got := a.Length(); got != 5 {
		t.Errorf("Length() = %f, expected 5", got)
	}
	if got := a.Distance(Vector2D{}); got != 5 {
		t.Errorf("Distance() = %f, expected 5", got)
	}
}

func TestVector3D_Length(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector3D
		expected float64
	}{
		{"zero", Vector3D{}, 0},
		{"unit_x", Vector3D{X: 1}, 1},
		{"pythagorean", Vector3D{X: 2, Y: 3, Z: 6}, 7},
		{"negative", Vector3D{X: -2, Y: -3, Z: -6}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Length(); !almostEqual(got, tt.expected) {
				t.Errorf("Length() = %f, expected %f", got, tt.expected)
			}
		})
	}
}

func TestVector3D_Cross(t *testing.T) {
	x := Vector3D{X: 1}
	y := Vector3D{Y: 1}
	if got := x.Cross(y); got != (Vector3D{Z: 1}) {
		t.Errorf("X × Y = %v, expected +Z", got)
	}
}

func TestVector3D_NormalizeZero(t *testing.T) {
	if got := (Vector3D{}).Normalize(); got != (Vector3D{}) {
		t.Errorf("Normalize() of zero vector = %v, expected zero", got)
	}
}

func TestVector3D_ClampLength(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector3D
		max      float64
		expected float64
	}{
		{"below_limit", Vector3D{X: 3, Y: 4}, 10, 5},
		{"at_limit", Vector3D{X: 6, Y: 8}, 10, 10},
		{"above_limit", Vector3D{X: 30, Y: 40}, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.ClampLength(tt.max)
			if !almostEqual(got.Length(), tt.expected) {
				t.Errorf("ClampLength() length = %f, expected %f", got.Length(), tt.expected)
			}
			if !vec3AlmostEqual(got.Normalize(), tt.v.Normalize()) {
				t.Errorf("ClampLength() changed direction: %v", got)
			}
		})
	}
}

func TestEuler_Rotate(t *testing.T) {
	forward := Vector3D{Z: -1}

	tests := []struct {
		name     string
		rotation Euler
		input    Vector3D
		expected Vector3D
	}{
		{"identity", Euler{}, forward, forward},
		{"yaw_left_quarter_turn", Euler{Yaw: math.Pi / 2}, forward, Vector3D{X: -1}},
		{"pitch_up_quarter_turn", Euler{Pitch: math.Pi / 2}, forward, Vector3D{Y: 1}},
		{"roll_quarter_turn", Euler{Roll: math.Pi / 2}, Vector3D{X: 1}, Vector3D{Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rotation.Rotate(tt.input)
			if !vec3AlmostEqual(got, tt.expected) {
				t.Errorf("Rotate(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClamp_NaNOutsideRange(t *testing.T) {
	if got := Clamp(math.NaN(), 2, 5); got != 2 {
		t.Errorf("Clamp(NaN, 2, 5) = %f, expected 2", got)
	}
}

func TestEuler_RotatePreservesLength(t *testing.T) {
	e := Euler{Pitch: 0.3, Yaw: -1.2, Roll: 2.5}
	v := Vector3D{X: 1, Y: -2, Z: 3}
	if got := e.Rotate(v).Length(); !almostEqual(got, v.Length()) {
		t.Errorf("Rotate changed length: %f vs %f", got, v.Length())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{-3, -1}, {-1, -1}, {0.25, 0.25}, {1, 1}, {7, 1},
		{math.NaN(), 0}, {math.Inf(1), 1}, {math.Inf(-1), -1},
	}
	for _, tt := range tests {
		if got := ClampUnit(tt.in); got != tt.expected {
			t.Errorf("ClampUnit(%f) = %f, expected %f", tt.in, got, tt.expected)
		}
	}
}
