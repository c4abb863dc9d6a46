package layout

import (
	"image"
	"strings"

	"github.com/meadori/dualscreen/command"
	"github.com/meadori/dualscreen/controller"
)

// Reference workspace geometry. The primary pane shows the emulated frame
// scaled up, the control pane shows the keypad art and its hotspots, and the
// footer band sits under the primary pane and holds the command buttons.
const (
	FrameWidth  = 352
	FrameHeight = 224
	FrameScale  = 2

	PrimaryWidth  = FrameWidth * FrameScale  // 704
	PrimaryHeight = FrameHeight * FrameScale // 448

	ControlWidth  = 370
	ControlHeight = 600

	WorkspaceWidth  = PrimaryWidth + ControlWidth // 1074
	WorkspaceHeight = ControlHeight               // 600

	FooterTop    = PrimaryHeight
	FooterHeight = WorkspaceHeight - FooterTop // 152
)

// Default size of the control background art. The hotspot grid is centred on
// this width until a background with a different width is loaded.
const (
	DefaultBackgroundWidth  = 446
	DefaultBackgroundHeight = 620
)

// Hotspot grid.
const (
	HotSpotRows   = 4
	HotSpotCols   = 3
	HotSpotSize   = 70
	HotSpotGapX   = 28
	HotSpotGapY   = 29
	HotSpotTop    = 183
	HotSpotCount  = HotSpotRows * HotSpotCols
	ButtonRows    = 2
	ButtonCols    = 3
	ButtonWidth   = 200
	ButtonHeight  = 50
	ButtonGutter  = 5
	ButtonCount   = ButtonRows * ButtonCols
	SwapButtonIdx = 2
)

// Pane identifies which half of the workspace a piece of geometry belongs to.
type Pane int

const (
	PrimaryPane Pane = iota
	ControlPane
)

func (p Pane) String() string {
	if p == ControlPane {
		return "control"
	}
	return "primary"
}

// HotSpot is a touch region mapped to a keypad input code. Rect is authored
// in unmirrored workspace coordinates.
type HotSpot struct {
	ID   int
	Rect image.Rectangle
	Code uint16
	Pane Pane
}

// CommandButton is a touch region mapped to a layout-level command. Rect is
// authored in unmirrored workspace coordinates.
type CommandButton struct {
	Rect    image.Rectangle
	Label   string
	Icon    string
	Command command.ID
	Enabled bool
	Pane    Pane
}

// buttonSlots is the per-slot configuration of the button grid, row-major.
var buttonSlots = [ButtonCount]struct {
	label   string
	icon    string
	command command.ID
	enabled bool
}{
	{"Menu", "button_ra_menu.png", command.Menu, false},
	{"Quit", "button_quit.png", command.Quit, false},
	{"Swap", "button_swapscreen.png", command.ToggleMirror, true},
	{"Save", "button_save.png", command.Save, false},
	{"Load", "button_load.png", command.Load, false},
	{"Screenshot", "button_screenshot.png", command.Screenshot, false},
}

// Model holds the workspace geometry and the mirror flag.
type Model struct {
	HotSpots []HotSpot
	Buttons  []CommandButton

	mirrored        bool
	backgroundWidth int
}

// New creates a new Model with the reference hotspot and button layout.
func New() *Model {
	m := &Model{}
	m.Buttons = buildButtons()
	m.Rebuild(DefaultBackgroundWidth)
	return m
}

// CenterGrid returns the offset that centres a run of count cells, separated
// by gutter, inside container. The offset is negative when the grid is wider
// than its container.
func CenterGrid(container, count, cell, gutter int) int {
	if count <= 0 {
		return container / 2
	}
	size := count*cell + (count-1)*gutter
	return (container - size) / 2
}

func buildButtons() []CommandButton {
	x0 := CenterGrid(PrimaryWidth, ButtonCols, ButtonWidth, ButtonGutter)
	y0 := FooterTop + CenterGrid(FooterHeight, ButtonRows, ButtonHeight, ButtonGutter)

	buttons := make([]CommandButton, 0, ButtonCount)
	for row := 0; row < ButtonRows; row++ {
		for col := 0; col < ButtonCols; col++ {
			slot := buttonSlots[row*ButtonCols+col]
			x := x0 + col*(ButtonWidth+ButtonGutter)
			y := y0 + row*(ButtonHeight+ButtonGutter)
			buttons = append(buttons, CommandButton{
				Rect:    image.Rect(x, y, x+ButtonWidth, y+ButtonHeight),
				Label:   slot.label,
				Icon:    slot.icon,
				Command: slot.command,
				Enabled: slot.enabled,
				Pane:    PrimaryPane,
			})
		}
	}
	return buttons
}

// Rebuild derives the hotspot grid for a control background of the given
// width. The background is centred in the control pane and the grid is
// centred in the background, so the hotspots stay aligned with the art.
func (m *Model) Rebuild(backgroundWidth int) {
	if backgroundWidth <= 0 {
		backgroundWidth = DefaultBackgroundWidth
	}
	m.backgroundWidth = backgroundWidth

	bgOffset := (ControlWidth - backgroundWidth) / 2
	x0 := PrimaryWidth + bgOffset + CenterGrid(backgroundWidth, HotSpotCols, HotSpotSize, HotSpotGapX)
	y0 := HotSpotTop

	m.HotSpots = m.HotSpots[:0]
	for row := 0; row < HotSpotRows; row++ {
		for col := 0; col < HotSpotCols; col++ {
			idx := row*HotSpotCols + col
			x := x0 + col*(HotSpotSize+HotSpotGapX)
			y := y0 + row*(HotSpotSize+HotSpotGapY)
			m.HotSpots = append(m.HotSpots, HotSpot{
				ID:   idx + 1,
				Rect: image.Rect(x, y, x+HotSpotSize, y+HotSpotSize),
				Code: controller.Keypad[idx],
				Pane: ControlPane,
			})
		}
	}
}

// BackgroundWidth returns the width the hotspot grid is currently centred on.
func (m *Model) BackgroundWidth() int {
	return m.backgroundWidth
}

// Size returns the workspace dimensions.
func (m *Model) Size() (int, int) {
	return WorkspaceWidth, WorkspaceHeight
}

// Bounds returns the workspace rectangle.
func (m *Model) Bounds() image.Rectangle {
	return image.Rect(0, 0, WorkspaceWidth, WorkspaceHeight)
}

// Mirrored reports whether the panes are swapped.
func (m *Model) Mirrored() bool {
	return m.mirrored
}

// SetMirrored sets the mirror flag.
func (m *Model) SetMirrored(mirrored bool) {
	m.mirrored = mirrored
}

// ToggleMirrored flips the mirror flag and returns the new value.
func (m *Model) ToggleMirrored() bool {
	m.mirrored = !m.mirrored
	return m.mirrored
}

// authoredOffset is the x-offset a pane has in the unmirrored layout.
func authoredOffset(p Pane) int {
	if p == ControlPane {
		return PrimaryWidth
	}
	return 0
}

// PaneOffset returns the physical x-offset of a pane for the current mirror
// state.
func (m *Model) PaneOffset(p Pane) int {
	if !m.mirrored {
		return authoredOffset(p)
	}
	if p == ControlPane {
		return 0
	}
	return ControlWidth
}

// PaneRect returns the physical rectangle of a pane. The primary pane covers
// the scaled frame and the footer band under it.
func (m *Model) PaneRect(p Pane) image.Rectangle {
	x := m.PaneOffset(p)
	if p == ControlPane {
		return image.Rect(x, 0, x+ControlWidth, ControlHeight)
	}
	return image.Rect(x, 0, x+PrimaryWidth, WorkspaceHeight)
}

// FooterRect returns the physical rectangle of the footer band.
func (m *Model) FooterRect() image.Rectangle {
	x := m.PaneOffset(PrimaryPane)
	return image.Rect(x, FooterTop, x+PrimaryWidth, WorkspaceHeight)
}

// Translate shifts a rectangle authored in the unmirrored layout to where it
// physically sits. Only the horizontal position changes.
func (m *Model) Translate(r image.Rectangle, p Pane) image.Rectangle {
	dx := m.PaneOffset(p) - authoredOffset(p)
	return r.Add(image.Pt(dx, 0))
}

// HotSpotRect returns the physical rectangle of a hotspot.
func (m *Model) HotSpotRect(i int) image.Rectangle {
	h := m.HotSpots[i]
	return m.Translate(h.Rect, h.Pane)
}

// ButtonRect returns the physical rectangle of a command button.
func (m *Model) ButtonRect(i int) image.Rectangle {
	b := m.Buttons[i]
	return m.Translate(b.Rect, b.Pane)
}

// SetEnabled enables or disables the command button with the given label.
// Labels are matched case-insensitively. It returns false if no slot has that
// label.
func (m *Model) SetEnabled(label string, enabled bool) bool {
	for i := range m.Buttons {
		if strings.EqualFold(m.Buttons[i].Label, label) {
			m.Buttons[i].Enabled = enabled
			return true
		}
	}
	return false
}

// EnableOnly enables the buttons named in labels and disables the rest.
// Unknown labels are returned.
func (m *Model) EnableOnly(labels []string) []string {
	for i := range m.Buttons {
		m.Buttons[i].Enabled = false
	}
	var unknown []string
	for _, l := range labels {
		if !m.SetEnabled(l, true) {
			unknown = append(unknown, l)
		}
	}
	return unknown
}
