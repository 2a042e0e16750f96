package bridge

import (
	"fmt"

	"github.com/Versifine/walker/internal/input"
	"github.com/google/uuid"
)

// clientMessage is any message a host sends. Type selects which fields are
// read.
type clientMessage struct {
	Type        string  `json:"type"`
	Key         string  `json:"key"`
	Down        bool    `json:"down"`
	DX          float64 `json:"dx"`
	DY          float64 `json:"dy"`
	Engaged     bool    `json:"engaged"`
	Phase       string  `json:"phase"`
	Seq         int64   `json:"seq"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FirstPerson bool    `json:"firstPerson"`
	Visible     bool    `json:"visible"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

type helloMessage struct {
	Type    string    `json:"type"`
	Session uuid.UUID `json:"session"`
}

type rotationMessage struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

type joystickMessage struct {
	Visible bool    `json:"visible"`
	Active  bool    `json:"active"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type poseMessage struct {
	Type     string           `json:"type"`
	Tick     uint64           `json:"tick"`
	Mode     string           `json:"mode"`
	Position [3]float64       `json:"position"`
	Velocity [3]float64       `json:"velocity"`
	OnFloor  bool             `json:"onFloor"`
	Rotation *rotationMessage `json:"rotation,omitempty"`
	Joystick joystickMessage  `json:"joystick"`
}

type captureMessage struct {
	Type string `json:"type"`
}

type respawnMessage struct {
	Type     string     `json:"type"`
	Position [3]float64 `json:"position"`
}

type modeMessage struct {
	Type        string `json:"type"`
	FirstPerson bool   `json:"firstPerson"`
}

type joystickVisibilityMessage struct {
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

// apply routes one client message into the target.
func (s *Server) apply(msg clientMessage) error {
	in := s.target.Input()
	switch msg.Type {
	case "key":
		k, err := input.ParseKey(msg.Key)
		if err != nil {
			return err
		}
		if msg.Down {
			in.KeyDown(k)
		} else {
			in.KeyUp(k)
		}
	case "pointer":
		in.PointerMove(msg.DX, msg.DY)
	case "engage":
		in.SetPointerEngaged(msg.Engaged)
	case "touch":
		switch msg.Phase {
		case "start":
			in.TouchStart(msg.Seq, msg.X, msg.Y)
		case "move":
			in.TouchMove(msg.Seq, msg.X, msg.Y)
		case "end", "cancel":
			in.TouchEnd(msg.Seq)
		default:
			return fmt.Errorf("unknown touch phase %q", msg.Phase)
		}
	case "mode":
		s.target.SetFirstPersonMode(msg.FirstPerson)
	case "stick":
		if msg.Visible {
			s.target.ShowMobileControls()
		} else {
			s.target.HideMobileControls()
		}
	case "viewport":
		if msg.Width <= 0 || msg.Height <= 0 {
			return fmt.Errorf("invalid viewport %vx%v", msg.Width, msg.Height)
		}
		in.SetJoystickBounds(input.JoystickBounds(msg.Width, msg.Height))
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}
