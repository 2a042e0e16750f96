package event

import "log/slog"

// LogEvents subscribes a handler that writes every controller event to log.
func LogEvents(bus *Bus, log *slog.Logger) {
	if bus == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}
	for _, name := range Names {
		bus.Subscribe(name, func(raw any) {
			switch evt := raw.(type) {
			case *ModeChangedEvent:
				log.Info("Mode changed", "controller", evt.ControllerID, "first_person", evt.FirstPerson, "touch", evt.TouchInput)
			case *RespawnEvent:
				log.Info("Player respawned", "controller", evt.ControllerID, "from_y", evt.From.Y())
			case *JoystickVisibilityEvent:
				log.Debug("Joystick visibility", "controller", evt.ControllerID, "visible", evt.Visible)
			case *PointerCaptureEvent:
				log.Debug("Pointer capture requested", "controller", evt.ControllerID)
			default:
				log.Error("Invalid event type", "event", name)
			}
		})
	}
}
