package controller

// Keypad codes for the hand controller. Each code is the bit pattern the
// console reads from the controller port while that key is held down.
const (
	Key1     uint16 = 0x81
	Key2     uint16 = 0x41
	Key3     uint16 = 0x21
	Key4     uint16 = 0x82
	Key5     uint16 = 0x42
	Key6     uint16 = 0x22
	Key7     uint16 = 0x84
	Key8     uint16 = 0x44
	Key9     uint16 = 0x24
	KeyClear uint16 = 0x88
	Key0     uint16 = 0x48
	KeyEnter uint16 = 0x28
)

// Keypad lists the twelve keys in row-major order, as they sit on the
// physical controller: 1 2 3 / 4 5 6 / 7 8 9 / C 0 E.
var Keypad = [12]uint16{
	Key1, Key2, Key3,
	Key4, Key5, Key6,
	Key7, Key8, Key9,
	KeyClear, Key0, KeyEnter,
}

// Ports is the number of hand controller ports on the console.
const Ports = 2

// Controller represents the hand controller ports of the console. It holds
// the packed input word each port presents to the emulation engine.
type Controller struct {
	words [Ports]uint16
}

// New creates a new Controller instance.
func New() *Controller {
	return &Controller{}
}

// Set replaces the input word of a port. Writes to ports that don't exist
// are ignored.
func (c *Controller) Set(port int, word uint16) {
	if port < 0 || port >= Ports {
		return
	}
	c.words[port] = word
}

// Word returns the input word currently presented on a port.
func (c *Controller) Word(port int) uint16 {
	if port < 0 || port >= Ports {
		return 0
	}
	return c.words[port]
}

// Clear releases every key on every port.
func (c *Controller) Clear() {
	c.words = [Ports]uint16{}
}

// KeyForRune maps a keyboard character to a keypad code. Digits map to the
// matching key, '[' to Clear and ']' to Enter.
func KeyForRune(r rune) (uint16, bool) {
	switch {
	case r == '0':
		return Key0, true
	case r >= '1' && r <= '9':
		return Keypad[r-'1'], true
	case r == '[':
		return KeyClear, true
	case r == ']':
		return KeyEnter, true
	}
	return 0, false
}
