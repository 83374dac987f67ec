package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "info level", level: slog.LevelInfo, msg: "information message", goldenName: "handler_info"},
		{name: "warn level", level: slog.LevelWarn, msg: "warning message", goldenName: "handler_warn"},
		{name: "error level", level: slog.LevelError, msg: "error message", goldenName: "handler_error"},
		{name: "debug level filtered", level: slog.LevelDebug, msg: "debug message", goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).With("method", "GET")
	lg.Info("serving request", "path", "/api/trades")

	g := goldie.New(t)
	g.Assert(t, "handler_attrs", buf.Bytes())
}

func TestPrettyHandler_Group(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).WithGroup("req")
	lg.Warn("cache write failed", "partition", "aqt-journal-v1")

	// Warnings carry the warning marker; groups prefix keys.
	assert.Equal(t, "! cache write failed req.partition=aqt-journal-v1\n", buf.String())

	buf.Reset()
	lg.Info("cache write failed", "partition", "aqt-journal-v1")
	g := goldie.New(t)
	g.Assert(t, "handler_group", buf.Bytes())
}

func TestCollectMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{name: "standard error", err: errors.New("simple error"), want: []string{"simple error"}},
		{name: "zerr single", err: zerr.New("zerr error"), want: []string{"zerr error"}},
		{
			name: "zerr wrapped chain",
			err:  zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer"),
			want: []string{"outer layer", "middle layer", "root cause"},
		},
		{
			name: "metadata adds no layer",
			err:  zerr.With(zerr.New("base error"), "key", "value"),
			want: []string{"base error"},
		},
		{
			name: "joined branches",
			err:  errors.Join(zerr.New("controller installation failed"), zerr.Wrap(errors.New("dial tcp"), "fetch failed")),
			want: []string{"controller installation failed", "fetch failed", "dial tcp"},
		},
		{name: "nil", err: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectMessages(tt.err))
		})
	}
}

func TestFormatMessages(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     string
	}{
		{name: "single", messages: []string{"single error"}, want: "Error: single error"},
		{
			name:     "causes",
			messages: []string{"outer", "inner", "root"},
			want:     "Error: outer\n\n  Caused by:\n    → inner\n    → root",
		},
		{
			name:     "multiline",
			messages: []string{"line1\nline2", "cause1\ncause2"},
			want:     "Error: line1\n       line2\n\n  Caused by:\n    → cause1\n      cause2",
		},
		{name: "empty", messages: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatMessages(tt.messages))
		})
	}
}

func TestLogger_JSONMode(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)
	l.SetJSON(true)

	l.Info("activated v2")
	l.Error(errors.New("controller is redundant"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "activated v2", first["msg"])

	var second map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "ERROR", second["level"])
	assert.Contains(t, second["error"], "controller is redundant")
}

func TestLogger_Verbose(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetVerbose(true)
	l.Debug("visible")
	assert.Equal(t, "visible\n", buf.String())
}

func TestLogger_ErrorPretty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)

	l.Error(zerr.Wrap(errors.New("connection refused"), "failed to fetch manifest asset"))
	assert.Equal(t, "✗ Error: failed to fetch manifest asset\n\n  Caused by:\n    → connection refused\n", buf.String())

	buf.Reset()
	l.Error(nil)
	assert.Empty(t, buf.String())
}
