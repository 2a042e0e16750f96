package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/walker/internal/physics"
)

const degenerateArea = 1e-12

type Triangle struct {
	A mgl64.Vec3
	B mgl64.Vec3
	C mgl64.Vec3
}

// Normal follows counter-clockwise winding: (C-B) x (A-B).
func (t Triangle) Normal() mgl64.Vec3 {
	n := t.C.Sub(t.B).Cross(t.A.Sub(t.B))
	l := n.Len()
	if l < degenerateArea {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / l)
}

func (t Triangle) Degenerate() bool {
	return t.C.Sub(t.B).Cross(t.A.Sub(t.B)).Len() < degenerateArea
}

func (t Triangle) Bounds() physics.AABB {
	box := physics.AABB{Min: t.A, Max: t.A}
	return box.Expand(t.B).Expand(t.C)
}

// SignedDistance is the distance from p to the triangle's plane, positive on
// the side the normal points to.
func (t Triangle) SignedDistance(p mgl64.Vec3) float64 {
	n := t.Normal()
	return n.Dot(p) - n.Dot(t.A)
}

// ContainsPoint reports whether p, assumed on the triangle's plane, lies
// inside the triangle or on its border.
func (t Triangle) ContainsPoint(p mgl64.Vec3) bool {
	v0 := t.C.Sub(t.A)
	v1 := t.B.Sub(t.A)
	v2 := p.Sub(t.A)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < degenerateArea {
		return false
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv
	return u >= 0 && v >= 0 && u+v <= 1
}

func (t Triangle) edges() [3][2]mgl64.Vec3 {
	return [3][2]mgl64.Vec3{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}}
}

// capsuleContact tests one triangle against the capsule. The face is checked
// first; when the segment crosses the plane outside the triangle the edges are
// tested with a closest-points query.
func capsuleContact(c physics.Capsule, tri Triangle) (physics.Contact, bool) {
	normal := tri.Normal()
	if normal == (mgl64.Vec3{}) {
		return physics.Contact{}, false
	}

	d1 := tri.SignedDistance(c.Start) - c.Radius
	d2 := tri.SignedDistance(c.End) - c.Radius
	if (d1 > 0 && d2 > 0) || (d1 < -c.Radius && d2 < -c.Radius) {
		return physics.Contact{}, false
	}

	delta := 0.5
	if sum := math.Abs(d1) + math.Abs(d2); sum > physics.ContactEpsilon {
		delta = math.Abs(d1 / sum)
	}
	point := c.Start.Add(c.End.Sub(c.Start).Mul(delta))
	if tri.ContainsPoint(point) {
		return physics.Contact{Normal: normal, Depth: math.Abs(math.Min(d1, d2))}, true
	}

	r2 := c.Radius * c.Radius
	for _, edge := range tri.edges() {
		onCapsule, onEdge := physics.ClosestSegmentPoints(c.Start, c.End, edge[0], edge[1])
		gap := onCapsule.Sub(onEdge)
		dist2 := gap.Dot(gap)
		if dist2 >= r2 || dist2 < physics.ContactEpsilon {
			continue
		}
		dist := math.Sqrt(dist2)
		return physics.Contact{Normal: gap.Mul(1 / dist), Depth: c.Radius - dist}, true
	}
	return physics.Contact{}, false
}
