package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "json", &buf)
	require.NoError(t, err)

	logger.Debugw("hidden", "k", 1)
	logger.Infow("extraction finished", "kind", "fgts", "found", 3)
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "extraction finished", entry["msg"])
	assert.Equal(t, "fgts", entry["kind"])
	assert.EqualValues(t, 3, entry["found"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("debug", "console", &buf)
	require.NoError(t, err)

	logger.Debugw("reading file", "path", "crf.pdf")
	assert.Contains(t, buf.String(), "reading file")
	assert.Contains(t, buf.String(), "crf.pdf")
}

func TestNewWithWriter_Errors(t *testing.T) {
	_, err := NewWithWriter("verbose", "json", &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewWithWriter("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Infow("discarded", "k", "v")
	})
}
