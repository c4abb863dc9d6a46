package session

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/meadori/dualscreen/assets"
	"github.com/meadori/dualscreen/cartridge"
	"github.com/meadori/dualscreen/command"
	"github.com/meadori/dualscreen/compositor"
	"github.com/meadori/dualscreen/console"
	"github.com/meadori/dualscreen/hittest"
	"github.com/meadori/dualscreen/layout"
	"github.com/meadori/dualscreen/logging"
)

// logEveryTicks bounds per-tick debug logging to about twice a second.
const logEveryTicks = 30

// Options configures a Session.
type Options struct {
	AssetDir      string
	DualScreen    bool
	HoldFrames    int
	Buttons       []string
	ScreenshotDir string
	// Decoder overrides the asset decoder; nil selects the default.
	Decoder assets.Decoder
}

// Input is what the host polled for one tick.
type Input struct {
	Pointer hittest.Sample
	// Keys is the keypad word from the keyboard.
	Keys uint16
}

// Output is the image handed to the host for one tick. Image is owned by the
// session and valid until the next Tick.
type Output struct {
	Image  *image.RGBA
	Width  int
	Height int
	Stride int
}

// Geometry describes the video the host should expect.
type Geometry struct {
	BaseWidth   int
	BaseHeight  int
	MaxWidth    int
	MaxHeight   int
	AspectRatio float64
}

// State is a copy of the externally visible session state.
type State struct {
	Tick       uint64
	Title      string
	DualScreen bool
	Mirrored   bool
	Word       uint16
	Active     []int
	Pressed    []bool
	// BackgroundWidth is the control background width the hotspot grid is
	// centred on.
	BackgroundWidth int
}

// Session owns every per-tick component. All methods are safe for concurrent
// use; Tick runs under a single lock.
type Session struct {
	mu sync.Mutex

	engine   console.Engine
	layout   *layout.Model
	assets   *assets.Store
	hits     *hittest.Engine
	dispatch *command.Dispatcher
	comp     *compositor.Compositor

	dualScreen    bool
	screenshotDir string
	cart          *cartridge.Cartridge

	tick     uint64
	word     uint16
	result   hittest.Result
	out      Output
	lastShot string
	// shotPending defers a screenshot until the tick's workspace is composed.
	shotPending bool

	remoteMu      sync.Mutex
	remotePointer hittest.Sample
	remoteKeys    uint16

	log     *slog.Logger
	limiter *logging.FrameLimiter
}

// New creates a new Session driving engine.
func New(engine console.Engine, opts Options) *Session {
	s := &Session{
		engine:        engine,
		layout:        layout.New(),
		assets:        assets.New(opts.AssetDir, opts.Decoder),
		hits:          hittest.New(opts.HoldFrames),
		dispatch:      command.NewDispatcher(),
		comp:          compositor.New(),
		dualScreen:    opts.DualScreen,
		screenshotDir: opts.ScreenshotDir,
		log:           slog.Default().With(slog.String("component", "session")),
	}
	s.limiter = logging.NewFrameLimiter(s.log, logEveryTicks)

	if opts.Buttons != nil {
		for _, label := range s.layout.EnableOnly(opts.Buttons) {
			s.log.Warn("unknown button in config", "label", label)
		}
	}

	s.dispatch.Register(command.ToggleMirror, s.toggleMirror)
	s.dispatch.Register(command.Screenshot, s.screenshot)
	return s
}

// OnQuit registers the host's handler for the Quit command.
func (s *Session) OnQuit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch.Register(command.Quit, fn)
}

// Layout returns the layout model. Callers must not mutate it concurrently
// with Tick.
func (s *Session) Layout() *layout.Model {
	return s.layout
}

// LoadTitle opens a title file, inserts it into the engine and resets all
// contact state.
func (s *Session) LoadTitle(path string) error {
	cart, err := cartridge.New(path)
	if err != nil {
		return fmt.Errorf("load title: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Load(cart); err != nil {
		return fmt.Errorf("load title %s: %w", cart.Name, err)
	}
	s.cart = cart
	s.hits.Reset()
	s.log.Info("title loaded", "name", cart.Name, "size", len(cart.Data),
		"checksum", fmt.Sprintf("%08x", cart.Checksum()))
	return nil
}

// UnloadTitle ejects the current title.
func (s *Session) UnloadTitle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Load(nil); err != nil {
		s.log.Warn("eject failed", "err", err)
	}
	s.cart = nil
	s.hits.Reset()
}

// SetDualScreen switches between the composed workspace and the raw frame.
func (s *Session) SetDualScreen(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dualScreen != on {
		s.hits.Reset()
	}
	s.dualScreen = on
}

// SetMirrored sets the pane order.
func (s *Session) SetMirrored(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout.SetMirrored(on)
}

// SetRemotePointer replaces the remote pointer sample read by the next tick.
func (s *Session) SetRemotePointer(p hittest.Sample) {
	s.remoteMu.Lock()
	s.remotePointer = p
	s.remoteMu.Unlock()
}

// SetRemoteKeys replaces the remote keypad word read by the next tick.
func (s *Session) SetRemoteKeys(word uint16) {
	s.remoteMu.Lock()
	s.remoteKeys = word
	s.remoteMu.Unlock()
}

func (s *Session) remote() (hittest.Sample, uint16) {
	s.remoteMu.Lock()
	defer s.remoteMu.Unlock()
	return s.remotePointer, s.remoteKeys
}

// mergePointer prefers whichever source is in contact, local first.
func mergePointer(local, remote hittest.Sample) hittest.Sample {
	if local.Contact {
		return local
	}
	if remote.Contact {
		return remote
	}
	return local
}

// Tick runs one frame: hit-test, dispatch, deliver input, run the engine and
// compose the workspace.
func (s *Session) Tick(in Input) Output {
	s.mu.Lock()
	defer s.mu.Unlock()

	remotePointer, remoteKeys := s.remote()
	keys := in.Keys | remoteKeys
	s.tick++

	if !s.dualScreen {
		s.result = hittest.Result{}
		s.deliver(keys)
		frame := s.engine.Frame()
		s.out = Output{
			Image:  frame,
			Width:  frame.Bounds().Dx(),
			Height: frame.Bounds().Dy(),
			Stride: frame.Stride,
		}
		return s.out
	}

	s.ensureAssets()

	res := s.hits.Tick(s.layout, mergePointer(in.Pointer, remotePointer))
	for _, i := range res.Edges {
		b := s.layout.Buttons[i]
		if !s.dispatch.Dispatch(b.Command) {
			s.limiter.Log(context.Background(), s.tick, "inert."+b.Label, slog.LevelDebug, "command not handled", slog.String("button", b.Label))
		}
	}
	if res.Word != 0 && res.Word != s.result.Word {
		s.limiter.Log(context.Background(), s.tick, "word", slog.LevelDebug, "keypad word", slog.Int("word", int(res.Word)), slog.Any("active", res.Active))
	}
	s.result = res

	word := res.Word
	if word == 0 {
		word = keys
	}
	s.deliver(word)

	img := s.comp.Compose(s.scene())
	s.out = Output{
		Image:  img,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Stride: img.Stride,
	}
	if s.shotPending {
		s.shotPending = false
		s.saveScreenshot()
	}
	return s.out
}

func (s *Session) deliver(word uint16) {
	s.word = word
	s.engine.SetInput(0, word)
	s.engine.RunFrame()
}

func (s *Session) titlePath() string {
	if s.cart == nil {
		return ""
	}
	return s.cart.Path
}

// ensureAssets resolves every layer the next composition needs. The store
// only decodes on the first request per identifier.
func (s *Session) ensureAssets() {
	bg := s.assets.Load(assets.ControlBackground, "")
	if bg.IsLoaded() && bg.Width() != s.layout.BackgroundWidth() {
		s.layout.Rebuild(bg.Width())
		s.log.Debug("hotspots rebuilt", "background_width", bg.Width())
	}
	s.assets.Load(assets.TitleOverlay, s.titlePath())
	for _, b := range s.layout.Buttons {
		if b.Enabled {
			s.assets.Load(assets.ButtonIcon, b.Icon)
		}
	}
}

func layerImage(l *assets.Layer) *image.NRGBA {
	if !l.IsLoaded() {
		return nil
	}
	return l.Image
}

func (s *Session) scene() compositor.Scene {
	icons := make([]*image.NRGBA, len(s.layout.Buttons))
	for i, b := range s.layout.Buttons {
		if b.Enabled {
			icons[i] = layerImage(s.assets.Icon(b.Icon))
		}
	}
	return compositor.Scene{
		Frame:      s.engine.Frame(),
		Layout:     s.layout,
		Overlay:    layerImage(s.assets.Overlay()),
		Background: layerImage(s.assets.Background()),
		Icons:      icons,
		Pressed:    s.result.Pressed,
		Active:     s.result.Active,
	}
}

func (s *Session) toggleMirror() {
	mirrored := s.layout.ToggleMirrored()
	s.log.Info("panes swapped", "mirrored", mirrored)
}

// screenshot requests a capture of the workspace composed by the current
// tick, including the highlight of the button that asked for it.
func (s *Session) screenshot() {
	s.shotPending = true
}

func (s *Session) saveScreenshot() {
	if s.out.Image == nil {
		return
	}
	dir := s.screenshotDir
	if dir == "" {
		dir = "."
	}
	name := "workspace"
	if s.cart != nil {
		name = s.cart.Name
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s-%d.png", name, time.Now().Format("20060102-150405"), s.tick))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Warn("screenshot failed", "err", err)
		return
	}
	if err := imaging.Save(s.out.Image, path); err != nil {
		s.log.Warn("screenshot failed", "path", path, "err", err)
		return
	}
	s.lastShot = path
	s.log.Info("screenshot saved", "path", path)
}

// LastScreenshot returns the path of the most recent screenshot.
func (s *Session) LastScreenshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastShot
}

// Geometry returns the output size for the current mode.
func (s *Session) Geometry() Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := layout.FrameWidth, layout.FrameHeight
	if s.dualScreen {
		w, h = s.layout.Size()
	}
	return Geometry{
		BaseWidth:   w,
		BaseHeight:  h,
		MaxWidth:    w,
		MaxHeight:   h,
		AspectRatio: float64(w) / float64(h),
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Tick:       s.tick,
		DualScreen: s.dualScreen,
		Mirrored:   s.layout.Mirrored(),
		Word:       s.word,
		Active:     append([]int(nil), s.result.Active...),
		Pressed:    append([]bool(nil), s.result.Pressed...),

		BackgroundWidth: s.layout.BackgroundWidth(),
	}
	if s.cart != nil {
		st.Title = s.cart.Name
	}
	return st
}

// Snapshot returns a copy of the last output image, or nil before the first
// tick.
func (s *Session) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out.Image == nil {
		return nil
	}
	src := s.out.Image
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return dst
}

// Close releases every asset.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets.Close()
}
