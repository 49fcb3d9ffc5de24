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

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelInfo, Format: "json", Component: "planner", Output: &buf})

	l.Info("plan generated", "user_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "plan generated", entry["msg"])
	assert.Equal(t, "planner", entry["component"])
	assert.Equal(t, float64(7), entry["user_id"])
	assert.Equal(t, "planner", l.Name())
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelWarn, Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=app")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelInfo, Output: &buf}).With("request_id", "abc")

	l.Info("hello")
	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Equal(t, "app", l.Name())
}

func TestWithComponent_ReplacesName(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: slog.LevelInfo, Format: "json", Output: &buf}).WithComponent("transfer")

	l.Info("ok")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "transfer", entry["component"])
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"component"`)))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Same(t, L(), FromContext(context.Background()))

	l := New(Options{Component: "http"})
	ctx := IntoContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
