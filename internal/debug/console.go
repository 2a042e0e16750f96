package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/walker/internal/controller"
	"github.com/Versifine/walker/internal/input"
	"golang.org/x/term"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
	defaultLookStep     = 0.05
)

// Driven is the part of the controller the console needs.
type Driven interface {
	Tick(frameDelta float64)
	Input() *input.State
	SetFirstPersonMode(firstPerson bool)
	ShowMobileControls()
	HideMobileControls()
	State() controller.State
	DebugState() controller.DebugState
}

// Console drives a controller from a raw terminal. A terminal reports key
// presses but no releases, so movement keys are held for a short pulse.
type Console struct {
	target       Driven
	out          io.Writer
	log          *slog.Logger
	tickInterval time.Duration
	movePulse    time.Duration
	lookStep     float64

	mu          sync.Mutex
	held        map[input.Key]time.Time
	lastTick    time.Time
	commandMode bool
	commandBuf  []rune
	statusWidth int
}

type Options struct {
	TickInterval time.Duration
	MovePulse    time.Duration
	Logger       *slog.Logger

	// LookStep is the rotation of one arrow key press, in radians.
	LookStep float64
}

func NewConsole(target Driven, opts Options) *Console {
	c := &Console{
		target:       target,
		out:          os.Stdout,
		tickInterval: opts.TickInterval,
		movePulse:    opts.MovePulse,
		lookStep:     opts.LookStep,
		log:          opts.Logger,
		held:         make(map[input.Key]time.Time),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.tickInterval <= 0 {
		c.tickInterval = defaultTickInterval
	}
	if c.movePulse <= 0 {
		c.movePulse = defaultMovePulse
	}
	if c.lookStep <= 0 {
		c.lookStep = defaultLookStep
	}
	return c
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.target == nil {
		return fmt.Errorf("console target is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()
	if w, _, err := term.GetSize(fd); err == nil {
		c.mu.Lock()
		c.statusWidth = w - 1
		c.mu.Unlock()
	}

	// the terminal stands in for a locked pointer
	c.target.Input().SetPointerEngaged(true)

	fmt.Fprint(c.out, "[debug] console started (W/A/S/D pulse, Space jump, arrows look, F first person, :)\r\n")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if b == 3 { // Ctrl-C is not delivered as a signal in raw mode
			return nil
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.step(now)
			c.renderStatusLine()
		}
	}
}

// step releases expired pulses and ticks the controller with the time
// elapsed since the previous step.
func (c *Console) step(now time.Time) {
	c.mu.Lock()
	in := c.target.Input()
	for k, until := range c.held {
		if !now.Before(until) {
			in.KeyUp(k)
			delete(c.held, k)
		}
	}
	dt := c.tickInterval.Seconds()
	if !c.lastTick.IsZero() {
		dt = now.Sub(c.lastTick).Seconds()
	}
	c.lastTick = now
	c.mu.Unlock()

	c.target.Tick(dt)
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulse(input.KeyForward, input.KeyBack)
	case 's', 'S':
		c.pulse(input.KeyBack, input.KeyForward)
	case 'a', 'A':
		c.pulse(input.KeyStrafeLeft, input.KeyStrafeRight)
	case 'd', 'D':
		c.pulse(input.KeyStrafeRight, input.KeyStrafeLeft)
	case ' ':
		c.pulse(input.KeyJump, -1)
	case 'f', 'F':
		c.toggleFirstPerson()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.look(-c.lookStep, 0)
		case 'C': // right
			c.look(c.lookStep, 0)
		case 'A': // up
			c.look(0, -c.lookStep)
		case 'B': // down
			c.look(0, c.lookStep)
		}
	}
	c.renderStatusLine()
}

// pulse holds k for one move pulse and releases its opposite.
func (c *Console) pulse(k, opposite input.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	in := c.target.Input()
	in.KeyDown(k)
	c.held[k] = time.Now().Add(c.movePulse)
	if _, ok := c.held[opposite]; ok {
		in.KeyUp(opposite)
		delete(c.held, opposite)
	}
}

func (c *Console) clearInput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	in := c.target.Input()
	for k := range c.held {
		in.KeyUp(k)
		delete(c.held, k)
	}
}

// look turns by the given angles, expressed as pointer motion so the
// normal pointer path applies them.
func (c *Console) look(yaw, pitch float64) {
	in := c.target.Input()
	sens := in.Tuning().PointerSensitivity
	in.PointerMove(yaw/sens, pitch/sens)
}

func (c *Console) toggleFirstPerson() {
	fp := c.target.State().Mode != controller.FirstPerson
	c.target.SetFirstPersonMode(fp)
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		st := c.target.State()
		p, v := st.Capsule.End, st.Velocity
		fmt.Fprintf(c.out, "[debug] capsule end=(%.3f,%.3f,%.3f) r=%.2f vel=(%.3f,%.3f,%.3f) floor=%t mode=%s\r\n",
			p.X(), p.Y(), p.Z(), st.Capsule.Radius,
			v.X(), v.Y(), v.Z(),
			st.OnFloor, st.Mode,
		)
	case "dump":
		ds := c.target.DebugState()
		fmt.Fprintf(c.out, "[debug] id=%s mode=%s touch=%t camera=%t engaged=%t respawns=%d ticks=%d\r\n",
			ds.ID, ds.Mode, ds.TouchInput, ds.CameraAttached, ds.PointerEngaged, ds.Respawns, ds.Ticks)
		fmt.Fprintf(c.out, "[debug] touch look enabled=%t looking=%t joystick visible=%t active=%t\r\n",
			ds.TouchLook.Enabled, ds.TouchLook.Looking, ds.Joystick.Visible, ds.Joystick.Active)
		fmt.Fprintf(c.out, "[debug] octree triangles=%d skipped=%d nodes=%d leaves=%d depth=%d\r\n",
			ds.Octree.Triangles, ds.Octree.Skipped, ds.Octree.Nodes, ds.Octree.Leaves, ds.Octree.Depth)
	case "mode":
		if len(parts) != 2 || (parts[1] != "fp" && parts[1] != "overview") {
			fmt.Fprint(c.out, "[debug] usage: :mode fp|overview\r\n")
			return
		}
		c.target.SetFirstPersonMode(parts[1] == "fp")
		fmt.Fprintf(c.out, "[debug] mode set to %s\r\n", parts[1])
	case "stick":
		if len(parts) != 2 || (parts[1] != "on" && parts[1] != "off") {
			fmt.Fprint(c.out, "[debug] usage: :stick on|off\r\n")
			return
		}
		if parts[1] == "on" {
			c.target.ShowMobileControls()
		} else {
			c.target.HideMobileControls()
		}
	case "key":
		c.handleKeyCommand(parts)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

// handleKeyCommand holds or releases a key until told otherwise:
// :key forward down, :key forward up.
func (c *Console) handleKeyCommand(parts []string) {
	if len(parts) != 3 {
		fmt.Fprint(c.out, "[debug] usage: :key <forward|back|left|right|jump> <down|up>\r\n")
		return
	}
	k, err := input.ParseKey(parts[1])
	if err != nil {
		fmt.Fprintf(c.out, "[debug] %v\r\n", err)
		return
	}
	in := c.target.Input()
	switch parts[2] {
	case "down":
		c.mu.Lock()
		delete(c.held, k)
		c.mu.Unlock()
		in.KeyDown(k)
	case "up":
		in.KeyUp(k)
	default:
		fmt.Fprintf(c.out, "[debug] invalid key state %q\r\n", parts[2])
		return
	}
	c.log.Debug("Console key command", "key", k.String(), "state", parts[2])
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  Space: jump\r\n")
	fmt.Fprint(c.out, "  Arrow Left/Right: yaw\r\n")
	fmt.Fprint(c.out, "  Arrow Up/Down: pitch\r\n")
	fmt.Fprint(c.out, "  F: toggle first person\r\n")
	fmt.Fprint(c.out, "  X: release all keys\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :mode fp|overview\r\n")
	fmt.Fprint(c.out, "  :stick on|off\r\n")
	fmt.Fprint(c.out, "  :key <name> down|up\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :dump\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	width := c.statusWidth
	c.mu.Unlock()

	st := c.target.State()
	ds := c.target.DebugState()
	p := st.Capsule.End

	line := fmt.Sprintf(
		"[%s | X:%.2f Y:%.2f Z:%.2f | SPD:%.2f floor:%t | respawns:%d]",
		st.Mode,
		p.X(), p.Y(), p.Z(),
		horizontalSpeed(st),
		st.OnFloor,
		ds.Respawns,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func horizontalSpeed(st controller.State) float64 {
	v := st.Velocity
	v[1] = 0
	return v.Len()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}
