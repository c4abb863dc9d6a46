package command

// ID identifies a layout-level command a command button can trigger.
type ID int

// Command identifiers. Only commands with a registered handler have any
// effect; the rest are accepted and ignored.
const (
	None ID = iota
	Menu
	Quit
	ToggleMirror
	Save
	Load
	Screenshot
)

func (id ID) String() string {
	switch id {
	case Menu:
		return "menu"
	case Quit:
		return "quit"
	case ToggleMirror:
		return "toggle-mirror"
	case Save:
		return "save"
	case Load:
		return "load"
	case Screenshot:
		return "screenshot"
	}
	return "none"
}

// Handler performs the side effect of a command.
type Handler func()

// Dispatcher maps command identifiers to their handlers.
type Dispatcher struct {
	handlers map[ID]Handler
}

// NewDispatcher creates a new Dispatcher with no handlers registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[ID]Handler),
	}
}

// Register sets the handler for a command, replacing any previous one. A nil
// handler unregisters the command.
func (d *Dispatcher) Register(id ID, fn Handler) {
	if fn == nil {
		delete(d.handlers, id)
		return
	}
	d.handlers[id] = fn
}

// Handled reports whether a command has a handler.
func (d *Dispatcher) Handled(id ID) bool {
	_, ok := d.handlers[id]
	return ok
}

// Dispatch runs the handler for a command. It returns false if the command
// is inert.
func (d *Dispatcher) Dispatch(id ID) bool {
	fn, ok := d.handlers[id]
	if !ok {
		return false
	}
	fn()
	return true
}
