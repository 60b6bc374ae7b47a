package logs

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerWritesJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	logger, err := FileLogger()
	require.NoError(t, err)

	logger.Info("license-health run", "licensed_users", 3, "emailed", true)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "license-health run", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(3), entry["licensed_users"])
	assert.Equal(t, true, entry["emailed"])
}

func TestFileLoggerAppendsAcrossOpens(t *testing.T) {
	t.Chdir(t.TempDir())

	first, err := FileLogger()
	require.NoError(t, err)
	first.Info("first run")

	second, err := FileLogger()
	require.NoError(t, err)
	second.Info("second run")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")
}
