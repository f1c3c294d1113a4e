package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTo_JSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitTo(&buf, "debug", "json")

	ctx := ContextWithRequestID(context.Background(), "req-1")
	FromContext(ctx).Debug("draft created", "court_id", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "draft created", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, float64(3), line["court_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Len(t, NewRequestID(), 36)
}
