package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	f, logger, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)
	logger.SetOutput(f)

	logger.WithField("table", "employees").Info("written")
	logger.Debug("hidden")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"table":"employees"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestConsoleLogger_Level(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, ConsoleLogger(logrus.WarnLevel).GetLevel())
}
