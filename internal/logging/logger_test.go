package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("LOG_TIMESTAMP", "2026-01-01T00:00:00Z")
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		_ = Initialize("info")
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"warning", WARN, false},
		{" error ", ERROR, false},
		{"fatal", FATAL, false},
		{"loud", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_FormatsFieldsSorted(t *testing.T) {
	buf := capture(t)
	require.NoError(t, Initialize("info"))

	GetLogger("diagnosis.runner").
		WithField("run_id", "r1").
		InfoWithFields("run complete", Field("chains", 2), Field("b", "x"))

	assert.Equal(t,
		"[2026-01-01T00:00:00Z] [INFO] diagnosis.runner: run complete | b=x chains=2 run_id=r1\n",
		buf.String())
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := capture(t)
	require.NoError(t, Initialize("warn"))

	logger := GetLogger("api")
	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN] api: shown 1")
}

func TestPackageLevels_WildcardAndExact(t *testing.T) {
	buf := capture(t)
	require.NoError(t, Initialize("error", map[string]string{
		"ontology.*":       "debug",
		"ontology.watcher": "warn",
	}))

	GetLogger("ontology.memory").Debug("memory debug")
	GetLogger("ontology.watcher").Info("watcher info")
	GetLogger("ontology").Debug("root debug")
	GetLogger("checks").Warn("checks warn")

	out := buf.String()
	assert.Contains(t, out, "memory debug")
	assert.Contains(t, out, "root debug")
	assert.NotContains(t, out, "watcher info")
	assert.NotContains(t, out, "checks warn")
}

func TestSetPackageLogLevels_Invalid(t *testing.T) {
	err := SetPackageLogLevels(map[string]string{"graph": "chatty"})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "graph"))
}

func TestLogger_WithContextAddsTraceFields(t *testing.T) {
	buf := capture(t)
	require.NoError(t, Initialize("info"))

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	GetLogger("api").WithContext(ctx).Info("request")
	assert.Contains(t, buf.String(), "span_id=0102030405060708")
	assert.Contains(t, buf.String(), "trace_id=0102030405060708090a0b0c0d0e0f10")
}

func TestLogger_FatalCallsExit(t *testing.T) {
	_ = capture(t)
	code := 0
	prev := exitFunc
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() { exitFunc = prev })

	GetLogger("cmd").Fatal("boom")
	assert.Equal(t, 1, code)
}
