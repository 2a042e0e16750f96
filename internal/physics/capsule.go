package physics

import "github.com/go-gl/mathgl/mgl64"

// Capsule is a swept sphere: every point within Radius of the Start-End segment.
type Capsule struct {
	Start  mgl64.Vec3
	End    mgl64.Vec3
	Radius float64
}

// AABB is an axis-aligned box used for broadphase queries.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func NewCapsule(start, end mgl64.Vec3, radius float64) Capsule {
	return Capsule{Start: start, End: end, Radius: radius}
}

func (c *Capsule) Translate(v mgl64.Vec3) {
	c.Start = c.Start.Add(v)
	c.End = c.End.Add(v)
}

func (c Capsule) Center() mgl64.Vec3 {
	return c.Start.Add(c.End).Mul(0.5)
}

func (c Capsule) Bounds() AABB {
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	lo := mgl64.Vec3{
		min(c.Start.X(), c.End.X()),
		min(c.Start.Y(), c.End.Y()),
		min(c.Start.Z(), c.End.Z()),
	}
	hi := mgl64.Vec3{
		max(c.Start.X(), c.End.X()),
		max(c.Start.Y(), c.End.Y()),
		max(c.Start.Z(), c.End.Z()),
	}
	return AABB{Min: lo.Sub(r), Max: hi.Add(r)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

// Expand grows the box to contain p.
func (a AABB) Expand(p mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{min(a.Min.X(), p.X()), min(a.Min.Y(), p.Y()), min(a.Min.Z(), p.Z())},
		Max: mgl64.Vec3{max(a.Max.X(), p.X()), max(a.Max.Y(), p.Y()), max(a.Max.Z(), p.Z())},
	}
}

func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// ClosestSegmentPoints returns the closest pair of points between segments
// p1-q1 and p2-q2, each parameter clamped to its segment.
func ClosestSegmentPoints(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	r := q1.Sub(p1)
	s := q2.Sub(p2)
	w := p2.Sub(p1)

	a := r.Dot(s)
	b := r.Dot(r)
	c := s.Dot(s)
	d := s.Dot(w)
	e := r.Dot(w)

	var t1, t2 float64
	divisor := b*c - a*a
	switch {
	case c < ContactEpsilon:
		// second segment is a point
		t2 = 0
		if b > ContactEpsilon {
			t1 = e / b
		}
	case divisor < ContactEpsilon && divisor > -ContactEpsilon:
		d1 := -d / c
		d2 := (a - d) / c
		if abs(d1-0.5) < abs(d2-0.5) {
			t1, t2 = 0, d1
		} else {
			t1, t2 = 1, d2
		}
	default:
		t1 = (e*c - d*a) / divisor
		t2 = (t1*a - d) / c
	}

	t1 = mgl64.Clamp(t1, 0, 1)
	t2 = mgl64.Clamp(t2, 0, 1)
	return p1.Add(r.Mul(t1)), p2.Add(s.Mul(t2))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
