package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrDegenerate = errors.New("degenerate shape")

// Mesh is a slice-backed Geometry.
type Mesh struct {
	tris []Triangle
}

func NewMesh(tris ...Triangle) *Mesh {
	return &Mesh{tris: append([]Triangle(nil), tris...)}
}

func (m *Mesh) Triangles() []Triangle {
	if m == nil {
		return nil
	}
	return m.tris
}

func (m *Mesh) Len() int {
	if m == nil {
		return 0
	}
	return len(m.tris)
}

func (m *Mesh) AddTriangle(t Triangle) error {
	if t.Degenerate() {
		return fmt.Errorf("triangle %v: %w", t, ErrDegenerate)
	}
	m.tris = append(m.tris, t)
	return nil
}

// AddQuad adds the planar quad a-b-c-d as two triangles. Winding is fixed so
// the face normal points along up when up is non-zero.
func (m *Mesh) AddQuad(a, b, c, d, up mgl64.Vec3) error {
	first := Triangle{A: a, B: b, C: c}
	second := Triangle{A: a, B: c, C: d}
	if first.Degenerate() || second.Degenerate() {
		return fmt.Errorf("quad %v %v %v %v: %w", a, b, c, d, ErrDegenerate)
	}
	if up != (mgl64.Vec3{}) && first.Normal().Dot(up) < 0 {
		first = Triangle{A: a, B: c, C: b}
		second = Triangle{A: a, B: d, C: c}
	}
	m.tris = append(m.tris, first, second)
	return nil
}

// AddBox adds the six outward-facing sides of an axis-aligned box.
func (m *Mesh) AddBox(lo, hi mgl64.Vec3) error {
	if lo.X() >= hi.X() || lo.Y() >= hi.Y() || lo.Z() >= hi.Z() {
		return fmt.Errorf("box %v..%v: %w", lo, hi, ErrDegenerate)
	}
	x0, y0, z0 := lo.X(), lo.Y(), lo.Z()
	x1, y1, z1 := hi.X(), hi.Y(), hi.Z()
	faces := []struct {
		corners [4]mgl64.Vec3
		out     mgl64.Vec3
	}{
		{[4]mgl64.Vec3{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}, mgl64.Vec3{0, 1, 0}},
		{[4]mgl64.Vec3{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}, mgl64.Vec3{0, -1, 0}},
		{[4]mgl64.Vec3{{x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}, {x1, y0, z1}}, mgl64.Vec3{1, 0, 0}},
		{[4]mgl64.Vec3{{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}}, mgl64.Vec3{-1, 0, 0}},
		{[4]mgl64.Vec3{{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}}, mgl64.Vec3{0, 0, 1}},
		{[4]mgl64.Vec3{{x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}, {x1, y0, z0}}, mgl64.Vec3{0, 0, -1}},
	}
	for _, f := range faces {
		if err := m.AddQuad(f.corners[0], f.corners[1], f.corners[2], f.corners[3], f.out); err != nil {
			return err
		}
	}
	return nil
}

// Ground returns a square floor of the given half extent at height y.
func Ground(halfExtent, y float64) (*Mesh, error) {
	if halfExtent <= 0 {
		return nil, fmt.Errorf("ground half extent %v: %w", halfExtent, ErrDegenerate)
	}
	m := NewMesh()
	h := halfExtent
	if err := m.AddQuad(
		mgl64.Vec3{-h, y, -h},
		mgl64.Vec3{-h, y, h},
		mgl64.Vec3{h, y, h},
		mgl64.Vec3{h, y, -h},
		mgl64.Vec3{0, 1, 0},
	); err != nil {
		return nil, err
	}
	return m, nil
}

// MustGround is like Ground but panics on an invalid extent.
func MustGround(halfExtent, y float64) *Mesh {
	m, err := Ground(halfExtent, y)
	if err != nil {
		panic(err)
	}
	return m
}
