// pkg/physics/collision.go
package physics

// Circle is a detection radius on the ground plane
type Circle struct {
	Center Vector2D
	Radius float64
}

// Contains reports whether point lies inside the circle (boundary inclusive)
func (c Circle) Contains(point Vector2D) bool {
	return c.Center.Sub(point).LengthSquared() <= c.Radius*c.Radius
}

// Bounds returns the square that encloses the circle
func (c Circle) Bounds() Rect {
	return Rect{Center: c.Center, Width: c.Radius * 2, Height: c.Radius * 2}
}

// Rect represents a rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// Contains reports whether point lies inside r. The low edges are inclusive.
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Intersects reports whether two rectangles overlap
func (r Rect) Intersects(other Rect) bool {
	return !(other.Center.X-other.Width/2 > r.Center.X+r.Width/2 ||
		other.Center.X+other.Width/2 < r.Center.X-r.Width/2 ||
		other.Center.Y-other.Height/2 > r.Center.Y+r.Height/2 ||
		other.Center.Y+other.Height/2 < r.Center.Y-r.Height/2)
}

// QuadTree partitions points on the ground plane for range queries
type QuadTree[T any] struct {
	Boundary Rect
	Capacity int

	points  []Vector2D
	objects []T
	divided bool
	nw      *QuadTree[T]
	ne      *QuadTree[T]
	sw      *QuadTree[T]
	se      *QuadTree[T]
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree[T any](boundary Rect, capacity int) *QuadTree[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree[T]{
		Boundary: boundary,
		Capacity: capacity,
		points:   make([]Vector2D, 0, capacity),
		objects:  make([]T, 0, capacity),
	}
}

// Insert stores object at point. It returns false when point is outside the tree.
func (qt *QuadTree[T]) Insert(point Vector2D, object T) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	if len(qt.points) < qt.Capacity && !qt.divided {
		qt.points = append(qt.points, point)
		qt.objects = append(qt.objects, object)
		return true
	}

	if !qt.divided {
		qt.subdivide()
	}

	return qt.nw.Insert(point, object) ||
		qt.ne.Insert(point, object) ||
		qt.sw.Insert(point, object) ||
		qt.se.Insert(point, object)
}

func (qt *QuadTree[T]) subdivide() {
	x := qt.Boundary.Center.X
	y := qt.Boundary.Center.Y
	w := qt.Boundary.Width / 2
	h := qt.Boundary.Height / 2

	qt.nw = NewQuadTree[T](Rect{Center: Vector2D{X: x - w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.ne = NewQuadTree[T](Rect{Center: Vector2D{X: x + w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.sw = NewQuadTree[T](Rect{Center: Vector2D{X: x - w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.se = NewQuadTree[T](Rect{Center: Vector2D{X: x + w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.divided = true
}

// Query returns every object whose point lies inside area
func (qt *QuadTree[T]) Query(area Rect) []T {
	var found []T
	qt.query(area, func(_ Vector2D, obj T) {
		found = append(found, obj)
	})
	return found
}

// QueryCircle returns every object whose point lies inside the circle
func (qt *QuadTree[T]) QueryCircle(c Circle) []T {
	var found []T
	qt.query(c.Bounds(), func(p Vector2D, obj T) {
		if c.Contains(p) {
			found = append(found, obj)
		}
	})
	return found
}

// Len returns the number of stored objects
func (qt *QuadTree[T]) Len() int {
	n := len(qt.points)
	if qt.divided {
		n += qt.nw.Len() + qt.ne.Len() + qt.sw.Len() + qt.se.Len()
	}
	return n
}

func (qt *QuadTree[T]) query(area Rect, visit func(Vector2D, T)) {
	if !qt.Boundary.Intersects(area) {
		return
	}
	for i, point := range qt.points {
		if area.Contains(point) {
			visit(point, qt.objects[i])
		}
	}
	if !qt.divided {
		return
	}
	qt.nw.query(area, visit)
	qt.ne.query(area, visit)
	qt.sw.query(area, visit)
	qt.se.query(area, visit)
}
