package input

import "strings"

// Rect is a screen-space rectangle with the origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Surface restricts touch look to a region of the screen, usually the canvas.
type Surface interface {
	Contains(x, y float64) bool
}

// HitTester classifies a screen point as interactive UI or game surface.
type HitTester interface {
	IsInteractive(x, y float64) bool
}

type HitTestFunc func(x, y float64) bool

func (f HitTestFunc) IsInteractive(x, y float64) bool {
	return f(x, y)
}

const DefaultZIndexThreshold = 100

var (
	interactiveTags      = []string{"button", "a", "input", "select", "textarea"}
	interactiveClassHint = []string{"menu", "ui", "control", "button", "btn"}
	interactiveIDHint    = []string{"menu", "ui", "control"}
)

// Element is a host-supplied node of the on-screen UI tree.
type Element struct {
	Tag       string
	ID        string
	Class     string
	Attrs     map[string]string
	Clickable bool
	ZIndex    int
	Bounds    Rect
	Children  []*Element

	parent *Element
}

// Append links children to e and returns e.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		c.parent = e
		e.Children = append(e.Children, c)
	}
	return e
}

func (e *Element) Parent() *Element {
	return e.parent
}

// ElementHitTester is a best-effort ui-occlusion test: it finds the topmost
// element under the point and walks up its ancestors looking for anything
// that looks interactive. False positives and negatives are expected.
type ElementHitTester struct {
	Root            *Element
	ZIndexThreshold int
}

func (h *ElementHitTester) IsInteractive(x, y float64) bool {
	if h == nil || h.Root == nil {
		return false
	}
	threshold := h.ZIndexThreshold
	if threshold <= 0 {
		threshold = DefaultZIndexThreshold
	}
	for el := topmost(h.Root, x, y); el != nil && el != h.Root; el = el.parent {
		if looksInteractive(el, threshold) {
			return true
		}
	}
	return false
}

// topmost returns the deepest, last-painted element containing the point.
func topmost(el *Element, x, y float64) *Element {
	if !el.Bounds.Contains(x, y) {
		return nil
	}
	for i := len(el.Children) - 1; i >= 0; i-- {
		if hit := topmost(el.Children[i], x, y); hit != nil {
			return hit
		}
	}
	return el
}

func looksInteractive(el *Element, zThreshold int) bool {
	tag := strings.ToLower(el.Tag)
	for _, t := range interactiveTags {
		if tag == t {
			return true
		}
	}
	if containsAny(strings.ToLower(el.Class), interactiveClassHint) {
		return true
	}
	if containsAny(strings.ToLower(el.ID), interactiveIDHint) {
		return true
	}
	if el.Clickable || el.Attrs["role"] == "button" || el.Attrs["data-clickable"] == "true" || el.Attrs["data-ui"] == "true" {
		return true
	}
	return el.ZIndex > zThreshold
}

func containsAny(s string, hints []string) bool {
	if s == "" {
		return false
	}
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}
