package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(format Format, level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Format = format
	cfg.Level = level
	cfg.EnableColors = false
	cfg.Output = buf
	return NewLogger(cfg), buf
}

func TestJSONFormatter_WritesFieldsAndError(t *testing.T) {
	l, buf := newTestLogger(FormatJSON, LevelInfo)

	l.WithFields(Fields{"email": "alice@example.com"}).WithError(errors.New("boom")).Warn("sign in rejected")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "WARN", out["level"])
	assert.Equal(t, "sign in rejected", out["message"])
	assert.Equal(t, "alice@example.com", out["email"])
	assert.Equal(t, "boom", out["error"])
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	l, buf := newTestLogger(FormatConsole, LevelWarn)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Error("shown")
	assert.Contains(t, buf.String(), "[ERROR] shown")
}

func TestConsoleFormatter_SortsFields(t *testing.T) {
	l, buf := newTestLogger(FormatConsole, LevelInfo)

	l.WithFields(Fields{"b": 2, "a": 1}).Info("msg")

	line := buf.String()
	assert.True(t, strings.Index(line, "a=1") < strings.Index(line, "b=2"))
}

func TestEntry_FatalCallsExit(t *testing.T) {
	l, _ := newTestLogger(FormatConsole, LevelInfo)
	code := -1
	l.exitFunc = func(c int) { code = c }

	l.WithField("k", "v").Fatal("bye")

	assert.Equal(t, 1, code)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
	assert.False(t, LevelInfo.Enabled(LevelOff))
}
