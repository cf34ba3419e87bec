package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestSetupAddsServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("otpauth", "1.2.3", "json", "info", &buf)

	logger.Info("hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "otpauth", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "v", entry["k"])
	assert.NotContains(t, entry, "trace_id")
}

func TestSetupAddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("otpauth", "dev", "json", "debug", &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestSetupLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("otpauth", "dev", "text", "warn", &buf)

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.True(t, strings.Contains(out, "service=otpauth"))
}

func TestWithAttrsAndGroupKeepService(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("otpauth", "dev", "json", "", &buf).With("component", "engine").WithGroup("req")

	logger.Info("grouped", "id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engine", entry["component"])
	assert.Contains(t, entry, "req")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
