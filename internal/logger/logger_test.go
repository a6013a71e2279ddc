package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, "test", log.WarnLevel)
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "test")
}

func TestSetup_File(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	p := filepath.Join(t.TempDir(), "server.log")

	closer, err := Setup("debug", p)
	require.NoError(t, err)

	log.Debug("indexed notes.txt")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "indexed notes.txt")
}

func TestSetup_InvalidLevel(t *testing.T) {
	_, err := Setup("loud", "")
	require.Error(t, err)
}

func TestSetup_UnwritableFile(t *testing.T) {
	_, err := Setup("info", filepath.Join(t.TempDir(), "missing", "server.log"))
	require.Error(t, err)
}
