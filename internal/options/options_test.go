package options

import (
	"bytes"
	"flag"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"shader.frag"})
	require.NoError(t, err)

	assert.Equal(t, "shader.frag", cfg.ShaderPath)
	assert.Equal(t, FullDisplay, cfg.Display)
	assert.Equal(t, 0, cfg.FrameLimit)
	assert.Equal(t, DefaultRenderOptions(), cfg.Render)
}

func TestParseQualityClamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0.01},
		{"-3", 0.01},
		{"0.005", 0.01},
		{"0.5", 0.5},
		{"1", 1},
		{"5", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg, err := Parse([]string{"a.frag", "-q", tt.in})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Render.Quality)
		})
	}
}

func TestParseOpacityClamp(t *testing.T) {
	cfg, err := Parse([]string{"a.frag", "--opacity", "1.7"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Render.Opacity)

	cfg, err = Parse([]string{"a.frag", "-o", "-0.2"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Render.Opacity)
}

func TestParseModes(t *testing.T) {
	for _, tt := range []struct {
		name string
		want Mode
	}{
		{"root", ModeRoot},
		{"window", ModeWindow},
		{"background", ModeBackground},
	} {
		cfg, err := Parse([]string{"a.frag", "--mode", tt.name})
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, cfg.Render.Mode)
		assert.Equal(t, tt.name, cfg.Render.Mode.String())
	}
}

func TestParseRejectsUnknownMode(t *testing.T) {
	for _, name := range []string{"Root", "fullscreen", "win10", ""} {
		_, err := Parse([]string{"a.frag", "-m", name})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrUsage), name)
	}
}

func TestParseOptionsBeforeAndAfterPath(t *testing.T) {
	cfg, err := Parse([]string{"-m", "root", "waves.frag", "-s", "-2.5", "--display", "DP-1"})
	require.NoError(t, err)

	assert.Equal(t, "waves.frag", cfg.ShaderPath)
	assert.Equal(t, ModeRoot, cfg.Render.Mode)
	assert.Equal(t, -2.5, cfg.Render.Speed)
	assert.Equal(t, "DP-1", cfg.Display)
}

func TestParseUsageErrors(t *testing.T) {
	tests := map[string][]string{
		"missing path":   {"-q", "0.5"},
		"two paths":      {"a.frag", "b.frag"},
		"bad float":      {"a.frag", "-q", "high"},
		"negative limit": {"a.frag", "-f", "-1"},
		"zero width":     {"a.frag", "--width", "0"},
		"bad filter":     {"a.frag", "--qm", "blurry"},
		"unknown flag":   {"a.frag", "--fullscreen"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUsage))
		})
	}
}

func TestParseHelp(t *testing.T) {
	_, err := Parse([]string{"--help"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestParseConfigureNeedsNoPath(t *testing.T) {
	cfg, err := Parse([]string{"--configure"})
	require.NoError(t, err)
	assert.True(t, cfg.Configure)
	assert.Empty(t, cfg.ShaderPath)
}

func TestArgsReparse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShaderPath = "/tmp/plasma.frag"
	cfg.Display = "HDMI-1"
	cfg.FrameLimit = 30
	cfg.Stats = true
	cfg.Render = RenderOptions{Quality: 0.25, Speed: -1.5, Opacity: 0.8, Mode: ModeRoot, Filter: FilterPixel}

	got, err := Parse(cfg.Args())
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestArgsKeepsDashedPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShaderPath = "-plasma.frag"
	cfg.Stats = true

	args := cfg.Args()
	assert.Equal(t, []string{"--", "-plasma.frag"}, args[len(args)-2:])

	got, err := Parse(args)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestUsageListsEveryOption(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf, "shadow")
	for _, opt := range []string{"--quality", "--speed", "--opacity", "--mode", "--display", "--framelimit"} {
		assert.Contains(t, buf.String(), opt)
	}
}
