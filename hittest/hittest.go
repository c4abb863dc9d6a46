package hittest

import (
	"image"

	"github.com/meadori/dualscreen/layout"
)

// DefaultHoldFrames is the number of ticks a hotspot keeps contributing its
// code after the pointer is released.
const DefaultHoldFrames = 3

// Raw pointer coordinates span [-RawMax, RawMax] on each axis.
const RawMax = 32767

// Sample is one raw pointer reading in host-normalised coordinates.
type Sample struct {
	X, Y    int16
	Contact bool
}

// Normalize maps a raw coordinate onto [0, extent-1].
func Normalize(raw int16, extent int) int {
	if extent <= 0 {
		return 0
	}
	p := (int(raw) + RawMax) * extent / (2 * RawMax)
	if p < 0 {
		return 0
	}
	if p > extent-1 {
		return extent - 1
	}
	return p
}

// Denormalize is the inverse of Normalize for hosts that read pixel
// positions. It maps the centre of pixel p back to raw coordinates.
func Denormalize(p, extent int) int16 {
	if extent <= 0 {
		return 0
	}
	raw := (2*p+1)*RawMax/extent - RawMax
	if raw < -RawMax {
		raw = -RawMax
	}
	if raw > RawMax {
		raw = RawMax
	}
	return int16(raw)
}

// Point converts a sample to workspace pixels. A sample at the origin with no
// contact carries no data and ok is false.
func (s Sample) Point(width, height int) (image.Point, bool) {
	if s.X == 0 && s.Y == 0 && !s.Contact {
		return image.Point{}, false
	}
	return image.Pt(Normalize(s.X, width), Normalize(s.Y, height)), true
}

// State is the debounce state of a single hotspot.
type State int

const (
	Idle State = iota
	Contacted
	Holding
)

func (s State) String() string {
	switch s {
	case Contacted:
		return "contacted"
	case Holding:
		return "holding"
	}
	return "idle"
}

// HotSpotState tracks contact for one hotspot.
type HotSpotState struct {
	Contacted  bool
	HoldFrames int
}

// State returns the debounce state.
func (h HotSpotState) State() State {
	switch {
	case h.Contacted:
		return Contacted
	case h.HoldFrames > 0:
		return Holding
	}
	return Idle
}

// Contributing reports whether the hotspot's code is part of the input word.
func (h HotSpotState) Contributing() bool {
	return h.Contacted || h.HoldFrames > 0
}

// Result is the outcome of one tick.
type Result struct {
	// Word is the OR of the codes of every contributing hotspot.
	Word uint16
	// Active lists the indices of contributing hotspots.
	Active []int
	// Pressed holds the pressed state of every command button.
	Pressed []bool
	// Edges lists the indices of buttons that went from released to pressed.
	Edges []int

	Point    image.Point
	HasPoint bool
}

// Engine resolves pointer samples against a layout.
type Engine struct {
	holdFrames int
	hotspots   []HotSpotState
	pressed    []bool
}

// New creates a new Engine. A non-positive holdFrames selects the default.
func New(holdFrames int) *Engine {
	if holdFrames <= 0 {
		holdFrames = DefaultHoldFrames
	}
	return &Engine{holdFrames: holdFrames}
}

// HoldFrames returns the configured release hold.
func (e *Engine) HoldFrames() int {
	return e.holdFrames
}

// Reset clears all contact state.
func (e *Engine) Reset() {
	for i := range e.hotspots {
		e.hotspots[i] = HotSpotState{}
	}
	for i := range e.pressed {
		e.pressed[i] = false
	}
}

// HotSpot returns the state of hotspot i.
func (e *Engine) HotSpot(i int) HotSpotState {
	if i < 0 || i >= len(e.hotspots) {
		return HotSpotState{}
	}
	return e.hotspots[i]
}

func (e *Engine) resize(m *layout.Model) {
	if len(e.hotspots) != len(m.HotSpots) {
		e.hotspots = make([]HotSpotState, len(m.HotSpots))
	}
	if len(e.pressed) != len(m.Buttons) {
		e.pressed = make([]bool, len(m.Buttons))
	}
}

// Tick advances the engine by one frame with the given sample.
func (e *Engine) Tick(m *layout.Model, s Sample) Result {
	e.resize(m)

	w, h := m.Size()
	pt, ok := s.Point(w, h)
	touching := ok && s.Contact

	res := Result{
		Point:    pt,
		HasPoint: ok,
		Pressed:  make([]bool, len(m.Buttons)),
	}

	for i := range m.HotSpots {
		st := &e.hotspots[i]
		inside := touching && pt.In(m.HotSpotRect(i))

		switch {
		case inside:
			st.Contacted = true
			st.HoldFrames = e.holdFrames
		case st.Contacted:
			// Release. The hold was armed on contact and counts down from here.
			st.Contacted = false
		}

		if st.Contributing() {
			res.Word |= m.HotSpots[i].Code
			res.Active = append(res.Active, i)
		}
		if !st.Contacted && st.HoldFrames > 0 {
			// The release tick itself is the first of the hold ticks.
			st.HoldFrames--
		}
	}

	for i, b := range m.Buttons {
		now := b.Enabled && touching && pt.In(m.ButtonRect(i))
		if now && !e.pressed[i] {
			res.Edges = append(res.Edges, i)
		}
		e.pressed[i] = now
		res.Pressed[i] = now
	}

	return res
}
