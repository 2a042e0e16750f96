package physics

import "github.com/go-gl/mathgl/mgl64"

// Contact is the single correction reported by an Index: moving the capsule
// by Normal*Depth removes the penetration.
type Contact struct {
	Normal mgl64.Vec3
	Depth  float64
}

// Index answers capsule queries against static geometry. Implementations must
// not mutate the capsule or their own state.
type Index interface {
	CapsuleIntersect(c Capsule) (Contact, bool)
}

// Resolve queries the index once and corrects the state. Floor contacts keep
// the velocity; walls and ceilings lose the component pointing into them.
func Resolve(state *State, index Index) (Contact, bool) {
	if state == nil {
		return Contact{}, false
	}
	state.OnFloor = false
	if index == nil {
		return Contact{}, false
	}

	contact, ok := index.CapsuleIntersect(state.Capsule)
	if !ok {
		return Contact{}, false
	}

	state.OnFloor = contact.Normal.Y() > 0
	if !state.OnFloor {
		state.Velocity = state.Velocity.Add(contact.Normal.Mul(-contact.Normal.Dot(state.Velocity)))
	}
	state.Capsule.Translate(contact.Normal.Mul(contact.Depth))
	return contact, true
}
