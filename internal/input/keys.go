package input

import (
	"fmt"
	"strings"

	"golang.org/x/mobile/event/key"
)

type Key int

const (
	KeyForward Key = iota
	KeyBack
	KeyStrafeLeft
	KeyStrafeRight
	KeyJump

	keyCount
)

var keyNames = [keyCount]string{
	KeyForward:     "forward",
	KeyBack:        "back",
	KeyStrafeLeft:  "left",
	KeyStrafeRight: "right",
	KeyJump:        "jump",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

func (k Key) valid() bool {
	return k >= 0 && k < keyCount
}

// ParseKey accepts the names produced by String, case-insensitively.
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range keyNames {
		if n == name {
			return Key(k), nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

// KeyFromCode maps physical keys to controller keys: WASD and the arrows
// move, space jumps.
func KeyFromCode(code key.Code) (Key, bool) {
	switch code {
	case key.CodeW, key.CodeUpArrow:
		return KeyForward, true
	case key.CodeS, key.CodeDownArrow:
		return KeyBack, true
	case key.CodeA, key.CodeLeftArrow:
		return KeyStrafeLeft, true
	case key.CodeD, key.CodeRightArrow:
		return KeyStrafeRight, true
	case key.CodeSpacebar:
		return KeyJump, true
	}
	return 0, false
}
