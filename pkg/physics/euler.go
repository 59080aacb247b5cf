package physics

import "math"

// Euler holds body rotation angles in radians. Pitch turns about X, Yaw
// about Y and Roll about Z; they are applied in XYZ order.
type Euler struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Add integrates an angular rate over dt, axis by axis. No wrapping or
// gimbal reconciliation is performed.
func (e Euler) Add(rate Vector3D, dt float64) Euler {
	return Euler{
		Pitch: e.Pitch + rate.X*dt,
		Yaw:   e.Yaw + rate.Y*dt,
		Roll:  e.Roll + rate.Z*dt,
	}
}

// Rotate transforms a body-frame vector into the world frame.
// The matrix is Rx(pitch)·Ry(yaw)·Rz(roll).
func (e Euler) Rotate(v Vector3D) Vector3D {
	a, b := math.Cos(e.Pitch), math.Sin(e.Pitch)
	c, d := math.Cos(e.Yaw), math.Sin(e.Yaw)
	ec, f := math.Cos(e.Roll), math.Sin(e.Roll)

	ae, af := a*ec, a*f
	be, bf := b*ec, b*f

	m11, m12, m13 := c*ec, -c*f, d
	m21, m22, m23 := af+be*d, ae-bf*d, -b*c
	m31, m32, m33 := bf-ae*d, be+af*d, a*c

	return Vector3D{
		X: m11*v.X + m12*v.Y + m13*v.Z,
		Y: m21*v.X + m22*v.Y + m23*v.Z,
		Z: m31*v.X + m32*v.Y + m33*v.Z,
	}
}
