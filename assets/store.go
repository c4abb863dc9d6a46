package assets

import (
	"image"
	"log/slog"
)

// Subdir is the folder under the asset directory that holds overlay art.
const Subdir = "dualscreen-overlays"

// Well-known file names.
const (
	ControlBackgroundFile = "controller_base.png"
	DefaultFile           = "default.png"
)

// Category selects a resolution chain.
type Category int

const (
	ControlBackground Category = iota
	TitleOverlay
	ButtonIcon
)

func (c Category) String() string {
	switch c {
	case ControlBackground:
		return "control-background"
	case TitleOverlay:
		return "title-overlay"
	case ButtonIcon:
		return "button-icon"
	}
	return "unknown"
}

type key struct {
	category   Category
	identifier string
}

// Store loads image layers from the asset directory and caches them. Every
// (category, identifier) pair is resolved at most once; a failed chain is
// not retried until the identifier changes.
type Store struct {
	dir     string
	decoder Decoder
	log     *slog.Logger

	background *Layer
	bgDone     bool

	overlay    *Layer
	overlayID  string
	overlaySet bool

	icons map[string]*Layer
}

// New creates a new Store reading from dir. A nil decoder selects
// ImagingDecoder.
func New(dir string, decoder Decoder) *Store {
	if decoder == nil {
		decoder = ImagingDecoder{}
	}
	return &Store{
		dir:        dir,
		decoder:    decoder,
		log:        slog.Default().With(slog.String("component", "assets")),
		background: &Layer{},
		overlay:    &Layer{},
		icons:      make(map[string]*Layer),
	}
}

// Dir returns the configured asset directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of an overlay file name.
func (s *Store) Path(name string) string {
	return JoinPath(s.dir, Subdir, name)
}

// Load resolves a layer. It never fails: a layer whose chain failed is
// returned with Loaded false, except title overlays, which fall back to a
// synthesised placeholder.
func (s *Store) Load(category Category, identifier string) *Layer {
	switch category {
	case ControlBackground:
		return s.loadBackground()
	case TitleOverlay:
		return s.loadOverlay(identifier)
	case ButtonIcon:
		return s.loadIcon(identifier)
	}
	return &Layer{}
}

// Background returns the control background layer without triggering a load.
func (s *Store) Background() *Layer {
	return s.background
}

// Overlay returns the current title overlay layer without triggering a load.
func (s *Store) Overlay() *Layer {
	return s.overlay
}

// Icon returns a loaded icon layer, or nil.
func (s *Store) Icon(name string) *Layer {
	return s.icons[name]
}

// AnyIconLoaded reports whether at least one button icon decoded.
func (s *Store) AnyIconLoaded() bool {
	for _, l := range s.icons {
		if l.IsLoaded() {
			return true
		}
	}
	return false
}

func (s *Store) loadBackground() *Layer {
	if s.bgDone {
		return s.background
	}
	s.bgDone = true
	img, from := s.first(ControlBackgroundFile, DefaultFile)
	s.background.replace(img)
	if img != nil {
		s.log.Info("control background loaded", "path", from,
			"width", s.background.Width(), "height", s.background.Height())
	} else {
		s.log.Warn("no control background; drawing without it", "dir", s.dir)
	}
	return s.background
}

func (s *Store) loadOverlay(title string) *Layer {
	if s.overlaySet && title == s.overlayID {
		return s.overlay
	}
	s.overlaySet = true
	s.overlayID = title
	s.overlay.Release()

	var names []string
	if base := BaseName(title); base != "" {
		names = append(names, base+".png", base+".jpg")
	}
	names = append(names, DefaultFile)

	img, from := s.first(names...)
	if img == nil {
		s.log.Warn("no overlay for title; using placeholder", "title", title)
		img = Placeholder()
	} else {
		s.log.Info("overlay loaded", "title", title, "path", from)
	}
	s.overlay.replace(img)
	return s.overlay
}

func (s *Store) loadIcon(name string) *Layer {
	if l, ok := s.icons[name]; ok {
		return l
	}
	l := &Layer{}
	s.icons[name] = l
	img, _ := s.first(name)
	l.replace(img)
	if img == nil {
		s.log.Debug("button icon missing", "icon", name)
	}
	return l
}

// first decodes the first name in the chain that succeeds.
func (s *Store) first(names ...string) (*image.NRGBA, string) {
	if s.dir == "" {
		return nil, ""
	}
	for _, name := range names {
		p := s.Path(name)
		img, err := s.decoder.Decode(p)
		if err == nil && img != nil {
			return img, p
		}
		s.log.Debug("asset decode failed", "path", p, "err", err)
	}
	return nil, ""
}

// Close releases every layer. Subsequent loads start from scratch.
func (s *Store) Close() {
	s.background.Release()
	s.bgDone = false
	s.overlay.Release()
	s.overlaySet = false
	s.overlayID = ""
	for name, l := range s.icons {
		l.Release()
		delete(s.icons, name)
	}
}
