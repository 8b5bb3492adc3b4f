package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	Setup(true, path)
	defer Setup(false, "")

	assert.True(t, Enabled)
	Scanner.Printf("carved png at %d", 4096)
	Live.Printf("mounted %s", "/dev/sdb1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[SCANNER] ")
	assert.Contains(t, string(data), "carved png at 4096")
	assert.Contains(t, string(data), "[LIVE] ")
}

func TestSetupDisabledWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	Setup(false, path)

	assert.False(t, Enabled)
	Debug.Printf("dropped")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSetWarnOutput(t *testing.T) {
	var buf bytes.Buffer
	SetWarnOutput(&buf)
	defer SetWarnOutput(os.Stderr)

	Warn.Printf("mount failed")
	assert.Equal(t, "warning: mount failed\n", buf.String())
}
