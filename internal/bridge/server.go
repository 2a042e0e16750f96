// Package bridge lets a remote host drive a controller over a websocket:
// the host streams its input events and receives a pose after every tick.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Versifine/walker/internal/camera"
	"github.com/Versifine/walker/internal/controller"
	"github.com/Versifine/walker/internal/event"
	"github.com/Versifine/walker/internal/input"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	writeWait           = 5 * time.Second
	maxMessageSize      = 4096
)

// Target is the controller surface the bridge drives.
type Target interface {
	Tick(frameDelta float64)
	Input() *input.State
	SetFirstPersonMode(firstPerson bool)
	ShowMobileControls()
	HideMobileControls()
	State() controller.State
}

type Config struct {
	Path         string
	TickInterval time.Duration
	Logger       *slog.Logger
}

type Server struct {
	target       Target
	cam          camera.Handle
	bus          *event.Bus
	log          *slog.Logger
	path         string
	tickInterval time.Duration
	upgrader     websocket.Upgrader

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	lastTick time.Time
	ticks    uint64
}

type session struct {
	id   uuid.UUID
	conn *websocket.Conn
	// gorilla connections support one concurrent writer
	writeMu sync.Mutex
}

func (s *session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// NewServer builds a bridge for target. cam supplies the rotation reported in
// poses and may be nil. Controller events published on bus are forwarded to
// every client in publish order; events raised by a tick reach clients
// before that tick's pose.
func NewServer(target Target, cam camera.Handle, bus *event.Bus, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		target:       target,
		cam:          cam,
		bus:          bus,
		log:          logger,
		path:         cfg.Path,
		tickInterval: cfg.TickInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessions: make(map[uuid.UUID]*session),
	}
	if s.path == "" {
		s.path = "/ws"
	}
	if s.tickInterval <= 0 {
		s.tickInterval = defaultTickInterval
	}
	s.subscribe(bus)
	return s
}

func (s *Server) subscribe(bus *event.Bus) {
	if bus == nil {
		return
	}
	bus.Subscribe(event.EventPointerCapture, func(any) {
		s.broadcast(captureMessage{Type: "capture"})
	})
	bus.Subscribe(event.EventRespawn, func(raw any) {
		if evt, ok := raw.(*event.RespawnEvent); ok {
			s.broadcast(respawnMessage{Type: "respawn", Position: evt.To})
		}
	})
	bus.Subscribe(event.EventModeChanged, func(raw any) {
		if evt, ok := raw.(*event.ModeChangedEvent); ok {
			s.broadcast(modeMessage{Type: "mode", FirstPerson: evt.FirstPerson})
		}
	})
	bus.Subscribe(event.EventJoystickVisibility, func(raw any) {
		if evt, ok := raw.(*event.JoystickVisibilityEvent); ok {
			s.broadcast(joystickVisibilityMessage{Type: "joystick", Visible: evt.Visible})
		}
	})
}

// Handler serves the websocket endpoint on the configured path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.Handle)
	return mux
}

// Serve listens on addr and ticks the target until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Bridge listening", "addr", addr, "path", s.path)
		errCh <- srv.ListenAndServe()
	}()
	go s.Run(ctx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown bridge: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("bridge listen: %w", err)
	}
}

// Run ticks the target on a fixed interval until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// tick advances the target by the time since the previous tick, lets the
// bus deliver the events it raised, then sends the resulting pose.
func (s *Server) tick(now time.Time) {
	s.mu.Lock()
	dt := s.tickInterval.Seconds()
	if !s.lastTick.IsZero() {
		dt = now.Sub(s.lastTick).Seconds()
	}
	s.lastTick = now
	s.ticks++
	tick := s.ticks
	s.mu.Unlock()

	s.target.Tick(dt)
	s.bus.Wait()
	s.broadcast(s.pose(tick))
}

func (s *Server) pose(tick uint64) poseMessage {
	st := s.target.State()
	js := s.target.Input().Joystick()
	msg := poseMessage{
		Type:     "pose",
		Tick:     tick,
		Mode:     st.Mode.String(),
		Position: st.Capsule.End,
		Velocity: st.Velocity,
		OnFloor:  st.OnFloor,
		Joystick: joystickMessage{
			Visible: js.Visible,
			Active:  js.Active,
			X:       js.Direction.X(),
			Y:       js.Direction.Y(),
		},
	}
	if s.cam != nil {
		rot := s.cam.Rotation()
		msg.Rotation = &rotationMessage{Pitch: rot.Pitch, Yaw: rot.Yaw, Roll: rot.Roll}
	}
	return msg
}

func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	sess := &session{id: uuid.New(), conn: conn}
	log := s.log.With("session", sess.id.String())

	hello, err := json.Marshal(helloMessage{Type: "hello", Session: sess.id})
	if err != nil {
		log.Error("Failed to marshal hello", "error", err)
		conn.Close()
		return
	}
	if err := sess.write(hello); err != nil {
		conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	count := len(s.sessions)
	s.mu.Unlock()
	log.Info("Bridge client connected", "remote", r.RemoteAddr, "clients", count)

	defer s.drop(sess)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Bridge read failed", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn("Discarding malformed message", "error", err)
			continue
		}
		if err := s.apply(msg); err != nil {
			log.Warn("Discarding message", "type", msg.Type, "error", err)
		}
	}
}

func (s *Server) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("Failed to marshal bridge message", "error", err)
		return
	}

	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		if err := sess.write(data); err != nil {
			s.log.Debug("Bridge write failed", "session", sess.id.String(), "error", err)
			s.drop(sess)
		}
	}
}

func (s *Server) drop(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	count := len(s.sessions)
	s.mu.Unlock()

	sess.conn.Close()
	if ok {
		s.log.Info("Bridge client disconnected", "session", sess.id.String(), "clients", count)
	}
}

func (s *Server) closeAll() {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, sess := range sessions {
		sess.writeMu.Lock()
		_ = sess.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		sess.writeMu.Unlock()
		s.drop(sess)
	}
}

// Clients is the number of connected hosts.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
