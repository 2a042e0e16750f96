package world

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Scene is the on-disk description of static collision geometry.
type Scene struct {
	Name      string          `yaml:"name"`
	Quads     []QuadShape     `yaml:"quads"`
	Boxes     []BoxShape      `yaml:"boxes"`
	Triangles [][3]mgl64.Vec3 `yaml:"triangles"`
}

type QuadShape struct {
	Corners [4]mgl64.Vec3 `yaml:"corners"`
	Up      mgl64.Vec3    `yaml:"up"`
}

type BoxShape struct {
	Min mgl64.Vec3 `yaml:"min"`
	Max mgl64.Vec3 `yaml:"max"`
}

func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(data)
}

func ParseScene(data []byte) (*Scene, error) {
	scene := &Scene{}
	if err := yaml.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return scene, nil
}

// Mesh converts the scene into triangles, failing on the first degenerate shape.
func (s *Scene) Mesh() (*Mesh, error) {
	m := NewMesh()
	if s == nil {
		return m, nil
	}
	for i, q := range s.Quads {
		if err := m.AddQuad(q.Corners[0], q.Corners[1], q.Corners[2], q.Corners[3], q.Up); err != nil {
			return nil, fmt.Errorf("scene %q quad %d: %w", s.Name, i, err)
		}
	}
	for i, b := range s.Boxes {
		if err := m.AddBox(b.Min, b.Max); err != nil {
			return nil, fmt.Errorf("scene %q box %d: %w", s.Name, i, err)
		}
	}
	for i, t := range s.Triangles {
		if err := m.AddTriangle(Triangle{A: t[0], B: t[1], C: t[2]}); err != nil {
			return nil, fmt.Errorf("scene %q triangle %d: %w", s.Name, i, err)
		}
	}
	return m, nil
}
