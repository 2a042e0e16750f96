package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/walker/internal/physics"
)

const (
	TrianglesPerLeaf = 8
	MaxOctreeDepth   = 16

	boundsPadding = 0.01
)

// Geometry is the opaque static-geometry input. It is consumed once when the
// index is built.
type Geometry interface {
	Triangles() []Triangle
}

type octreeNode struct {
	box       physics.AABB
	triangles []int
	children  []*octreeNode
}

// Octree is a read-only spatial index over static triangles. It is safe for
// concurrent queries once built.
type Octree struct {
	root      *octreeNode
	triangles []Triangle
	stats     OctreeStats
}

type OctreeStats struct {
	Triangles int
	Skipped   int
	Nodes     int
	Leaves    int
	Depth     int
}

var _ physics.Index = (*Octree)(nil)

func FromGeometry(g Geometry) *Octree {
	if g == nil {
		return NewOctree(nil)
	}
	return NewOctree(g.Triangles())
}

// NewOctree builds the index. Degenerate triangles are dropped.
func NewOctree(tris []Triangle) *Octree {
	o := &Octree{}
	for _, tri := range tris {
		if tri.Degenerate() {
			o.stats.Skipped++
			continue
		}
		o.triangles = append(o.triangles, tri)
	}
	o.stats.Triangles = len(o.triangles)
	if len(o.triangles) == 0 {
		return o
	}

	bounds := o.triangles[0].Bounds()
	for _, tri := range o.triangles[1:] {
		b := tri.Bounds()
		bounds = bounds.Expand(b.Min).Expand(b.Max)
	}
	size := bounds.Size()
	side := max(size.X(), size.Y(), size.Z()) + 2*boundsPadding
	lo := bounds.Min.Sub(mgl64.Vec3{boundsPadding, boundsPadding, boundsPadding})
	root := &octreeNode{
		box:       physics.AABB{Min: lo, Max: lo.Add(mgl64.Vec3{side, side, side})},
		triangles: make([]int, len(o.triangles)),
	}
	for i := range root.triangles {
		root.triangles[i] = i
	}
	o.root = root
	o.split(root, 0)
	o.collectStats(root, 0)
	return o
}

func (o *Octree) split(node *octreeNode, level int) {
	if len(node.triangles) <= TrianglesPerLeaf || level >= MaxOctreeDepth {
		return
	}
	half := node.box.Size().Mul(0.5)
	reduced := false
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				lo := node.box.Min.Add(mgl64.Vec3{float64(x) * half.X(), float64(y) * half.Y(), float64(z) * half.Z()})
				child := &octreeNode{box: physics.AABB{Min: lo, Max: lo.Add(half)}}
				for _, idx := range node.triangles {
					if child.box.Intersects(o.triangles[idx].Bounds()) {
						child.triangles = append(child.triangles, idx)
					}
				}
				if len(child.triangles) == 0 {
					continue
				}
				if len(child.triangles) < len(node.triangles) {
					reduced = true
				}
				node.children = append(node.children, child)
			}
		}
	}
	// Triangles sharing a point on a cell corner never separate.
	if !reduced {
		node.children = nil
		return
	}
	node.triangles = nil
	for _, child := range node.children {
		o.split(child, level+1)
	}
}

func (o *Octree) collectStats(node *octreeNode, depth int) {
	o.stats.Nodes++
	if depth > o.stats.Depth {
		o.stats.Depth = depth
	}
	if len(node.children) == 0 {
		o.stats.Leaves++
		return
	}
	for _, child := range node.children {
		o.collectStats(child, depth+1)
	}
}

func (o *Octree) Stats() OctreeStats {
	if o == nil {
		return OctreeStats{}
	}
	return o.stats
}

// candidates returns the triangles stored in leaves whose boxes overlap box,
// each index once, in traversal order.
func (o *Octree) candidates(box physics.AABB) []int {
	if o.root == nil {
		return nil
	}
	var out []int
	seen := make(map[int]struct{})
	var walk func(n *octreeNode)
	walk = func(n *octreeNode) {
		if !n.box.Intersects(box) {
			return
		}
		if len(n.children) == 0 {
			for _, idx := range n.triangles {
				if _, ok := seen[idx]; ok {
					continue
				}
				seen[idx] = struct{}{}
				out = append(out, idx)
			}
			return
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(o.root)
	return out
}

// CapsuleIntersect pushes a working copy of the capsule out of every
// overlapping triangle in turn and reports the net displacement as the one
// contact for this query.
func (o *Octree) CapsuleIntersect(c physics.Capsule) (physics.Contact, bool) {
	if o == nil || o.root == nil {
		return physics.Contact{}, false
	}

	work := c
	hit := false
	for _, idx := range o.candidates(c.Bounds()) {
		contact, ok := capsuleContact(work, o.triangles[idx])
		if !ok {
			continue
		}
		hit = true
		work.Translate(contact.Normal.Mul(contact.Depth))
	}
	if !hit {
		return physics.Contact{}, false
	}

	push := work.Center().Sub(c.Center())
	depth := push.Len()
	if depth < physics.ContactEpsilon {
		return physics.Contact{}, false
	}
	return physics.Contact{Normal: push.Mul(1 / depth), Depth: depth}, true
}
