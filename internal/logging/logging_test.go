package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ecolefin/internal/logging"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := logging.New(&buf, "warn", "json", "Ecolefin")
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "period", "month")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Ecolefin", entry["app"])
	assert.Equal(t, "month", entry["period"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer

	logger, err := logging.New(&buf, "DEBUG", "", "Ecolefin")
	require.NoError(t, err)

	logger.Debug("resolving period")
	assert.Contains(t, buf.String(), `msg="resolving period"`)
}

func TestNew_Invalid(t *testing.T) {
	_, err := logging.New(&bytes.Buffer{}, "loud", "text", "x")
	assert.Error(t, err)

	_, err = logging.New(&bytes.Buffer{}, "info", "xml", "x")
	assert.Error(t, err)
}
