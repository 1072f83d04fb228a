package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/scenekit/engine/logging"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{7, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logging.Level(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "state", "scenekit.log")
	closer := logging.SetupWriter(1, &console, path)

	l := logging.GetLogger("savedata")
	l.Info().Int("slot", 2).Msg("Game saved")
	l.Debug().Msg("hidden at info")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), `"component":"savedata"`)
	assert.Contains(t, console.String(), `"message":"Game saved"`)
	assert.NotContains(t, console.String(), "hidden at info")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Game saved")
}

func TestSetupWithoutFile(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var console bytes.Buffer
	closer := logging.SetupWriter(0, &console, "")
	require.NoError(t, closer.Close())
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestDefaultLogFile(t *testing.T) {
	assert.Equal(t, "scenekit.log", filepath.Base(logging.DefaultLogFile()))
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := logging.LogOperationStart(logger, "save")
	assert.Contains(t, buf.String(), `"message":"Operation started"`)
	done()

	assert.Contains(t, buf.String(), `"operation":"save"`)
	assert.Contains(t, buf.String(), `"message":"Operation completed"`)
	assert.Contains(t, buf.String(), `"duration":`)
}
