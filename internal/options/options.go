// Package options holds the process-wide render options and the command line
// surface that produces them. Values are decided once at startup and are never
// mutated afterwards.
package options

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Quality bounds for the offscreen pass.
const (
	MinQuality = 0.01
	MaxQuality = 1.0
)

// FullDisplay is the monitor sentinel selecting the whole virtual screen.
const FullDisplay = "full"

// ErrUsage marks errors caused by bad command line input.
var ErrUsage = errors.New("invalid arguments")

// Mode selects where rendered frames end up.
type Mode int

const (
	ModeBackground Mode = iota // borderless desktop-type window below everything
	ModeWindow                 // ordinary resizable window
	ModeRoot                   // root window background pixmap
)

var modeNames = map[Mode]string{
	ModeBackground: "background",
	ModeWindow:     "window",
	ModeRoot:       "root",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode resolves a mode name. Names are matched exactly.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.Errorf("mode '%s' does not exist, modes: root, window, background", s)
}

// Filter selects how the downscaled frame is magnified onto the destination.
type Filter int

const (
	FilterSmooth Filter = iota
	FilterPixel
)

func (f Filter) String() string {
	switch f {
	case FilterSmooth:
		return "smooth"
	case FilterPixel:
		return "pixel"
	}
	return "Filter(" + strconv.Itoa(int(f)) + ")"
}

// ParseFilter resolves a quality mode name.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "smooth":
		return FilterSmooth, nil
	case "pixel":
		return FilterPixel, nil
	}
	return 0, errors.Errorf("quality mode '%s' does not exist, modes: smooth, pixel", s)
}

// RenderOptions are the read-only knobs shared by every renderer.
type RenderOptions struct {
	Quality float64
	Speed   float64
	Opacity float64
	Mode    Mode
	Filter  Filter
}

// DefaultRenderOptions returns full quality, normal speed, opaque background mode.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Quality: 1,
		Speed:   1,
		Opacity: 1,
		Mode:    ModeBackground,
		Filter:  FilterSmooth,
	}
}

// ClampQuality forces q into [MinQuality, MaxQuality]. NaN maps to full quality.
func ClampQuality(q float64) float64 {
	if math.IsNaN(q) {
		return MaxQuality
	}
	return math.Min(math.Max(q, MinQuality), MaxQuality)
}

// ClampOpacity forces o into [0, 1]. NaN maps to opaque.
func ClampOpacity(o float64) float64 {
	if math.IsNaN(o) {
		return 1
	}
	return math.Min(math.Max(o, 0), 1)
}

// Config is everything decided on the command line.
type Config struct {
	ShaderPath string
	Display    string
	FrameLimit int
	Width      int
	Height     int
	Stats      bool
	Verbose    bool
	Detach     bool
	Configure  bool

	Render RenderOptions
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Display: FullDisplay,
		Width:   900,
		Height:  600,
		Render:  DefaultRenderOptions(),
	}
}

// Parse reads args (without the program name). Options may appear before or
// after the shader path. The returned error wraps ErrUsage or flag.ErrHelp.
func Parse(args []string) (Config, error) {
	cfg := DefaultConfig()
	fs := newFlagSet(&cfg)

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return cfg, err
			}
			return cfg, errors.Wrap(ErrUsage, err.Error())
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}

	switch {
	case len(positional) > 1:
		return cfg, errors.Wrapf(ErrUsage, "unexpected arguments: %s", strings.Join(positional[1:], " "))
	case len(positional) == 1:
		cfg.ShaderPath = positional[0]
	case !cfg.Configure:
		return cfg, errors.Wrap(ErrUsage, "missing shader path")
	}

	if cfg.FrameLimit < 0 {
		return cfg, errors.Wrapf(ErrUsage, "frame limit must not be negative, got %d", cfg.FrameLimit)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, errors.Wrapf(ErrUsage, "window size must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Display == "" {
		cfg.Display = FullDisplay
	}

	cfg.Render.Quality = ClampQuality(cfg.Render.Quality)
	cfg.Render.Opacity = ClampOpacity(cfg.Render.Opacity)
	return cfg, nil
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("shadow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	for _, name := range []string{"q", "quality"} {
		fs.Float64Var(&cfg.Render.Quality, name, cfg.Render.Quality, "")
	}
	for _, name := range []string{"s", "speed"} {
		fs.Float64Var(&cfg.Render.Speed, name, cfg.Render.Speed, "")
	}
	for _, name := range []string{"o", "opacity"} {
		fs.Float64Var(&cfg.Render.Opacity, name, cfg.Render.Opacity, "")
	}
	for _, name := range []string{"d", "display"} {
		fs.StringVar(&cfg.Display, name, cfg.Display, "")
	}
	for _, name := range []string{"f", "framelimit"} {
		fs.IntVar(&cfg.FrameLimit, name, cfg.FrameLimit, "")
	}
	for _, name := range []string{"v", "verbose"} {
		fs.BoolVar(&cfg.Verbose, name, cfg.Verbose, "")
	}
	for _, name := range []string{"c", "configure"} {
		fs.BoolVar(&cfg.Configure, name, cfg.Configure, "")
	}
	fs.IntVar(&cfg.Width, "width", cfg.Width, "")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "")
	fs.BoolVar(&cfg.Detach, "detach", cfg.Detach, "")

	mode := func(s string) error {
		m, err := ParseMode(s)
		if err != nil {
			return err
		}
		cfg.Render.Mode = m
		return nil
	}
	fs.Func("m", "", mode)
	fs.Func("mode", "", mode)

	filter := func(s string) error {
		f, err := ParseFilter(s)
		if err != nil {
			return err
		}
		cfg.Render.Filter = f
		return nil
	}
	fs.Func("qm", "", filter)
	fs.Func("qualitymode", "", filter)

	return fs
}

// Args renders cfg back into a command line accepted by Parse. Configure and
// Detach are left out since they describe how the process was started. The
// shader path comes last, after "--", so it is never read as an option.
func (c Config) Args() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	args := []string{
		"--quality", f(c.Render.Quality),
		"--speed", f(c.Render.Speed),
		"--opacity", f(c.Render.Opacity),
		"--mode", c.Render.Mode.String(),
		"--qualitymode", c.Render.Filter.String(),
		"--display", c.Display,
		"--framelimit", strconv.Itoa(c.FrameLimit),
		"--width", strconv.Itoa(c.Width),
		"--height", strconv.Itoa(c.Height),
	}
	if c.Stats {
		args = append(args, "--stats")
	}
	if c.Verbose {
		args = append(args, "--verbose")
	}
	return append(args, "--", c.ShaderPath)
}

// Usage writes the help text.
func Usage(w io.Writer, prog string) {
	fmt.Fprintf(w, "shadow - A Shader background for your desktop\n\n")
	fmt.Fprintf(w, "Usage: %s <path> [options]\n", prog)
	fmt.Fprintf(w, "Options:\n")
	rows := [][2]string{
		{"-q, --quality", "Changes quality level of the shader, 0.01 to 1, default 1."},
		{"-s, --speed", "Changes animation speed, default 1."},
		{"-o, --opacity", "Sets window transparency in window/background mode, default 1."},
		{"-m, --mode", "Changes rendering mode. Modes: root, window, background."},
		{"-d, --display", "Selects a monitor by name, default full."},
		{"-f, --framelimit", "Maximum frames per second, default 0 (unlimited)."},
		{"--qm, --qualitymode", "Magnification at lower quality. Modes: smooth, pixel."},
		{"--width, --height", "Window size in window mode, default 900x600."},
		{"--stats", "Draws frame statistics on top of the shader."},
		{"--detach", "Detaches from the terminal and keeps running in the background."},
		{"-c, --configure", "Opens the launcher dialog."},
		{"-v, --verbose", "Enables debug logging."},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-22s %s\n", row[0], row[1])
	}
}
