// Package launcher is the --configure dialog: pick a shader and its options,
// then start a detached renderer.
package launcher

import (
	"os"
	"strings"

	"github.com/danielfvm/shadow/internal/options"
	"github.com/danielfvm/shadow/internal/x11"
	"github.com/pkg/errors"
)

// ShaderSite is where the "Find shaders" button points.
const ShaderSite = "https://glslsandbox.com"

// Selection is the dialog's current state.
type Selection struct {
	ShaderPath string
	Mode       string
	Filter     string
	Display    string
	Quality    float64
	Speed      float64
	Opacity    float64
	FrameLimit int
	Stats      bool
}

// NewSelection seeds the dialog from cfg.
func NewSelection(cfg options.Config) Selection {
	return Selection{
		ShaderPath: cfg.ShaderPath,
		Mode:       cfg.Render.Mode.String(),
		Filter:     cfg.Render.Filter.String(),
		Display:    cfg.Display,
		Quality:    cfg.Render.Quality,
		Speed:      cfg.Render.Speed,
		Opacity:    cfg.Render.Opacity,
		FrameLimit: cfg.FrameLimit,
		Stats:      cfg.Stats,
	}
}

// Config validates the selection and merges it into base.
func (s Selection) Config(base options.Config) (options.Config, error) {
	cfg := base
	cfg.Configure = false
	cfg.Detach = false

	path := strings.TrimSpace(s.ShaderPath)
	if path == "" {
		return cfg, errors.New("choose a shader file first")
	}
	info, err := os.Stat(path)
	if err != nil {
		return cfg, errors.Wrap(err, "shader file")
	}
	if info.IsDir() {
		return cfg, errors.Errorf("%s is a directory", path)
	}
	cfg.ShaderPath = path

	mode, err := options.ParseMode(s.Mode)
	if err != nil {
		return cfg, err
	}
	filter, err := options.ParseFilter(s.Filter)
	if err != nil {
		return cfg, err
	}
	if s.FrameLimit < 0 {
		return cfg, errors.Errorf("frame limit must not be negative, got %d", s.FrameLimit)
	}

	cfg.Display = s.Display
	if cfg.Display == "" {
		cfg.Display = options.FullDisplay
	}
	cfg.FrameLimit = s.FrameLimit
	cfg.Stats = s.Stats
	cfg.Render = options.RenderOptions{
		Quality: options.ClampQuality(s.Quality),
		Speed:   s.Speed,
		Opacity: options.ClampOpacity(s.Opacity),
		Mode:    mode,
		Filter:  filter,
	}
	return cfg, nil
}

// DisplayChoices lists the monitor names offered in the dialog, "full" first.
func DisplayChoices(monitors []x11.Monitor) []string {
	choices := []string{options.FullDisplay}
	for _, m := range monitors {
		choices = append(choices, m.Name)
	}
	return choices
}
