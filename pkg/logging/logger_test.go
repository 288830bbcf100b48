package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Format: "json", Component: "api"}, &buf)

	ctx := WithAccountID(WithRequestID(context.Background(), "req-1"), 42)
	l.WithContext(ctx).Info("hello")

	m := decodeLine(t, &buf)
	assert.Equal(t, "api", m["component"])
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, float64(42), m["account_id"])
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestHTTPRequestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Format: "json"}, &buf)

	l.HTTPRequestLog(http.MethodGet, "/api/products", 500, 3*time.Millisecond, "127.0.0.1")
	m := decodeLine(t, &buf)
	assert.Equal(t, "ERROR", m["level"])
	assert.Equal(t, float64(500), m["status"])

	buf.Reset()
	l.HTTPRequestLog(http.MethodGet, "/api/products", 404, time.Millisecond, "127.0.0.1")
	assert.Equal(t, "WARN", decodeLine(t, &buf)["level"])
}

func TestDBQueryLogOnlyErrorsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Format: "json", Level: "info"}, &buf)

	l.DBQueryLog("select", "products", time.Millisecond, nil)
	assert.Zero(t, buf.Len())

	l.DBQueryLog("select", "products", time.Millisecond, errors.New("boom"))
	m := decodeLine(t, &buf)
	assert.Equal(t, "boom", m["error"])
	assert.Equal(t, "products", m["table"])
}
