package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/solquote/internal/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "solquote", func(context.Context) string { return "abc" })

	log.Info(context.Background(), "venue quoted", "venue", "jupiter", "out", 12.5, "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "venue quoted", lines[0]["msg"])
	assert.Equal(t, "jupiter", lines[0]["venue"])
	assert.Equal(t, 12.5, lines[0]["out"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "solquote", lines[0]["service"])
	assert.Equal(t, "abc", lines[0]["trace_id"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelWarn, "", nil)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
	_, hasTrace := lines[0]["trace_id"]
	assert.False(t, hasTrace, "no span in context means no trace id")
}

func TestLogger_DanglingKey(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelDebug, "", nil)

	log.Error(context.Background(), "odd args", "lonely")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "lonely", lines[0]["!BADKEY"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logger.Level{
		"debug":   logger.LevelDebug,
		"INFO":    logger.LevelInfo,
		"warning": logger.LevelWarn,
		"error":   logger.LevelError,
		"bogus":   logger.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}
