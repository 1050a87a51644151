package daemon

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer devNull.Close()

	cmd, err := Command([]string{"waves.frag", "--mode", "root"}, devNull)
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, exe, cmd.Path)
	assert.Equal(t, []string{exe, "waves.frag", "--mode", "root"}, cmd.Args)
	assert.Contains(t, cmd.Env, detachedEnvFlag+"=1")
	assert.True(t, cmd.SysProcAttr.Setsid)
	assert.Same(t, devNull, cmd.Stdout)
}

func TestDetached(t *testing.T) {
	t.Setenv(detachedEnvFlag, "")
	assert.False(t, Detached())

	t.Setenv(detachedEnvFlag, "1")
	assert.True(t, Detached())
}

func TestIsCharDevice(t *testing.T) {
	assert.False(t, isCharDevice(nil))

	f, err := os.CreateTemp(t.TempDir(), "plain")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isCharDevice(f))
}

func TestShouldDetach(t *testing.T) {
	tests := []struct {
		name                             string
		requested, detached, interactive bool
		want                             bool
	}{
		{"from terminal", true, false, true, true},
		{"not requested", false, false, true, false},
		{"already detached", true, true, true, false},
		{"no terminal", true, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldDetach(tt.requested, tt.detached, tt.interactive))
		})
	}

	t.Setenv(detachedEnvFlag, "1")
	assert.False(t, ShouldDetach(true))
	assert.False(t, ShouldDetach(false))
}
