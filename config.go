package thicket

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EventPrefix selects which pointer coordinates feed the normalised
// pointer position.
type EventPrefix string

const (
	EventPrefixNone   EventPrefix = ""
	EventPrefixOffset EventPrefix = "offset" // relative to the canvas
	EventPrefixClient EventPrefix = "client" // relative to the window
)

// CameraOptions configures the default camera.
type CameraOptions struct {
	X    float64 `yaml:"x" toml:"x"`
	Y    float64 `yaml:"y" toml:"y"`
	Zoom float64 `yaml:"zoom" toml:"zoom"`

	// Bounds keeps the visible area inside a world rectangle. A zero
	// area disables clamping.
	Bounds Bounds `yaml:"bounds" toml:"bounds"`

	// Follow names a scene node the camera tracks. FollowLerp is the
	// share of the remaining distance covered each frame; 0 snaps.
	Follow     string  `yaml:"follow" toml:"follow"`
	FollowLerp float64 `yaml:"followLerp" toml:"followLerp"`
}

// Bounds is a world-space rectangle.
type Bounds struct {
	X      float64 `yaml:"x" toml:"x"`
	Y      float64 `yaml:"y" toml:"y"`
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// Empty reports whether b encloses no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Options configures a canvas root. The zero value is not valid; start from
// DefaultOptions.
type Options struct {
	Title        string        `yaml:"title" toml:"title"`
	Frameloop    Frameloop     `yaml:"frameloop" toml:"frameloop"`
	DPR          float64       `yaml:"dpr" toml:"dpr"`
	Orthographic bool          `yaml:"orthographic" toml:"orthographic"`
	Flat         bool          `yaml:"flat" toml:"flat"`
	Linear       bool          `yaml:"linear" toml:"linear"`
	Shadows      bool          `yaml:"shadows" toml:"shadows"`
	EventPrefix  EventPrefix   `yaml:"eventPrefix" toml:"eventPrefix"`
	Camera       CameraOptions `yaml:"camera" toml:"camera"`
	Background   string        `yaml:"background" toml:"background"`
	Debug        bool          `yaml:"debug" toml:"debug"`
	LogLevel     slog.Level    `yaml:"logLevel" toml:"logLevel"`

	// Size is filled in from the latest measurement.
	Size Size `yaml:"-" toml:"-"`
}

// DefaultOptions returns the options a canvas uses when none are given.
func DefaultOptions() Options {
	return Options{
		Title:      "thicket",
		Frameloop:  FrameloopAlways,
		DPR:        1,
		Camera:     CameraOptions{Zoom: 1},
		Background: "#000000",
		LogLevel:   slog.LevelInfo,
	}
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	if o.DPR <= 0 {
		return fmt.Errorf("dpr must be positive, got %v", o.DPR)
	}
	if o.Camera.Zoom <= 0 {
		return fmt.Errorf("camera zoom must be positive, got %v", o.Camera.Zoom)
	}
	if b := o.Camera.Bounds; b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("camera bounds must not be negative, got %vx%v", b.Width, b.Height)
	}
	if l := o.Camera.FollowLerp; l < 0 || l > 1 {
		return fmt.Errorf("camera follow lerp must be within [0, 1], got %v", l)
	}
	switch o.EventPrefix {
	case EventPrefixNone, EventPrefixOffset, EventPrefixClient:
	default:
		return fmt.Errorf("unknown event prefix %q", o.EventPrefix)
	}
	if o.Background != "" {
		if _, err := ParseColor(o.Background); err != nil {
			return err
		}
	}
	return nil
}

// ParseOptions decodes data in format ("yaml", "yml" or "toml") over the
// defaults and validates the result.
func ParseOptions(data []byte, format string) (Options, error) {
	opts := DefaultOptions()
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &opts)
	case "toml":
		err = toml.Unmarshal(data, &opts)
	default:
		return opts, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return opts, fmt.Errorf("decode %s config: %w", format, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid config: %w", err)
	}
	return opts, nil
}

// LoadOptions reads a YAML or TOML file, chosen by extension.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultOptions(), fmt.Errorf("load config: %w", err)
	}
	opts, err := ParseOptions(data, filepath.Ext(path))
	if err != nil {
		return opts, fmt.Errorf("load config %s: %w", path, err)
	}
	return opts, nil
}

// MarshalOptions encodes opts in format ("yaml", "yml" or "toml").
func MarshalOptions(opts Options, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		return yaml.Marshal(opts)
	case "toml":
		return toml.Marshal(opts)
	}
	return nil, fmt.Errorf("unsupported config format %q", format)
}

// WatchOptions reloads path whenever it is written and passes the result
// (or the load error) to fn. It blocks until ctx is done. The directory is
// watched rather than the file so editors that replace files on save keep
// working.
func WatchOptions(ctx context.Context, path string, fn func(Options, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fn(LoadOptions(abs))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(Options{}, fmt.Errorf("watch config: %w", err))
		}
	}
}

// Color is an 8-bit RGBA colour.
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var c Color
	c.A = 0xff
	nib := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}
	byteAt := func(i int) (uint8, bool) {
		hi, ok1 := nib(hex[i])
		lo, ok2 := nib(hex[i+1])
		return hi<<4 | lo, ok1 && ok2
	}
	ok := true
	switch len(hex) {
	case 3:
		var r, g, b uint8
		var o1, o2, o3 bool
		r, o1 = nib(hex[0])
		g, o2 = nib(hex[1])
		b, o3 = nib(hex[2])
		c.R, c.G, c.B = r*17, g*17, b*17
		ok = o1 && o2 && o3
	case 6, 8:
		var o bool
		if c.R, o = byteAt(0); !o {
			ok = false
		}
		if c.G, o = byteAt(2); !o {
			ok = false
		}
		if c.B, o = byteAt(4); !o {
			ok = false
		}
		if len(hex) == 8 {
			if c.A, o = byteAt(6); !o {
				ok = false
			}
		}
	default:
		ok = false
	}
	if !ok {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	return c, nil
}
