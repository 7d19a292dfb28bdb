package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestContextHandler_AddsIdentifiers(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-1")

	// when
	log.InfoContext(ctx, "hello")

	// then
	line := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line[TraceIDKey])
	assert.Equal(t, "00f067aa0ba902b7", line[SpanIDKey])
	assert.Equal(t, "req-1", line[RequestIDKey])
}

func TestContextHandler_NoIdentifiers(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	// when
	log.InfoContext(context.Background(), "hello")

	// then
	line := decodeLine(t, &buf)
	assert.NotContains(t, line, TraceIDKey)
	assert.NotContains(t, line, RequestIDKey)
}

func TestContextHandler_WithAttrsKeepsWrapper(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "rest")
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-2")

	// when
	log.InfoContext(ctx, "hello")

	// then
	line := decodeLine(t, &buf)
	assert.Equal(t, "rest", line["component"])
	assert.Equal(t, "req-2", line[RequestIDKey])
}
