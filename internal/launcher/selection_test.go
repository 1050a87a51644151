package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielfvm/shadow/internal/options"
	"github.com/danielfvm/shadow/internal/x11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShader(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plasma.frag")
	require.NoError(t, os.WriteFile(path, []byte("void main() { gl_FragColor = vec4(1.0); }"), 0o644))
	return path
}

func TestSelectionRoundTrip(t *testing.T) {
	base := options.DefaultConfig()
	base.ShaderPath = writeShader(t)
	base.Configure = true

	cfg, err := NewSelection(base).Config(base)
	require.NoError(t, err)

	want := base
	want.Configure = false
	assert.Equal(t, want, cfg)
}

func TestSelectionConfig(t *testing.T) {
	path := writeShader(t)
	sel := Selection{
		ShaderPath: "  " + path + " ",
		Mode:       "root",
		Filter:     "pixel",
		Display:    "HDMI-1",
		Quality:    0,
		Speed:      -2,
		Opacity:    4,
		FrameLimit: 30,
		Stats:      true,
	}

	cfg, err := sel.Config(options.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ShaderPath)
	assert.Equal(t, "HDMI-1", cfg.Display)
	assert.Equal(t, 30, cfg.FrameLimit)
	assert.True(t, cfg.Stats)
	assert.Equal(t, options.RenderOptions{
		Quality: options.MinQuality,
		Speed:   -2,
		Opacity: 1,
		Mode:    options.ModeRoot,
		Filter:  options.FilterPixel,
	}, cfg.Render)

	// The chosen config must survive the trip through the child's command line.
	reparsed, err := options.Parse(cfg.Args())
	require.NoError(t, err)
	assert.Equal(t, cfg, reparsed)
}

func TestSelectionRejects(t *testing.T) {
	path := writeShader(t)
	valid := NewSelection(options.DefaultConfig())
	valid.ShaderPath = path

	tests := map[string]func(*Selection){
		"no path":        func(s *Selection) { s.ShaderPath = " " },
		"missing file":   func(s *Selection) { s.ShaderPath = path + ".missing" },
		"directory":      func(s *Selection) { s.ShaderPath = filepath.Dir(path) },
		"no mode":        func(s *Selection) { s.Mode = "" },
		"bad filter":     func(s *Selection) { s.Filter = "bicubic" },
		"negative limit": func(s *Selection) { s.FrameLimit = -5 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			sel := valid
			mutate(&sel)
			_, err := sel.Config(options.DefaultConfig())
			assert.Error(t, err)
		})
	}
}

func TestDisplayChoices(t *testing.T) {
	assert.Equal(t, []string{"full"}, DisplayChoices(nil))
	assert.Equal(t, []string{"full", "eDP-1", "DP-2"}, DisplayChoices([]x11.Monitor{
		{Name: "eDP-1"}, {Name: "DP-2"},
	}))
}
