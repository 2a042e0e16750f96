package physics

const (
	Gravity       = 30.0
	StepsPerFrame = 5
	MaxFrameDelta = 0.05

	GroundDampingRate  = 4.0
	AirDampingFactor   = 0.1
	GroundAcceleration = 25.0
	AirAcceleration    = 8.0
	JumpVelocity       = 15.0

	SpawnRadius = 0.25
	ResetRadius = 0.35

	ContactEpsilon = 1e-10
)

// Params holds the tunables of the motion loop. The zero value is not usable;
// start from DefaultParams.
type Params struct {
	Gravity            float64
	StepsPerFrame      int
	MaxFrameDelta      float64
	GroundDampingRate  float64
	AirDampingFactor   float64
	GroundAcceleration float64
	AirAcceleration    float64
	JumpVelocity       float64
}

func DefaultParams() Params {
	return Params{
		Gravity:            Gravity,
		StepsPerFrame:      StepsPerFrame,
		MaxFrameDelta:      MaxFrameDelta,
		GroundDampingRate:  GroundDampingRate,
		AirDampingFactor:   AirDampingFactor,
		GroundAcceleration: GroundAcceleration,
		AirAcceleration:    AirAcceleration,
		JumpVelocity:       JumpVelocity,
	}
}

// Sanitized replaces non-positive fields with their defaults.
func (p Params) Sanitized() Params {
	def := DefaultParams()
	if p.Gravity < 0 {
		p.Gravity = def.Gravity
	}
	if p.StepsPerFrame <= 0 {
		p.StepsPerFrame = def.StepsPerFrame
	}
	if p.MaxFrameDelta <= 0 {
		p.MaxFrameDelta = def.MaxFrameDelta
	}
	if p.GroundDampingRate < 0 {
		p.GroundDampingRate = def.GroundDampingRate
	}
	if p.AirDampingFactor < 0 || p.AirDampingFactor > 1 {
		p.AirDampingFactor = def.AirDampingFactor
	}
	if p.GroundAcceleration <= 0 {
		p.GroundAcceleration = def.GroundAcceleration
	}
	if p.AirAcceleration <= 0 {
		p.AirAcceleration = def.AirAcceleration
	}
	if p.JumpVelocity <= 0 {
		p.JumpVelocity = def.JumpVelocity
	}
	return p
}
