package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Severity: WARN,
		Outputs:  []Output{NewConsoleOutput(false, WithColor(false), WithWriter(&buf))},
	})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestRunIDPropagation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Severity: INFO,
		Outputs:  []Output{NewConsoleOutput(false, WithColor(false), WithWriter(&buf))},
	})

	ctx := WithRunID(context.Background(), "run-42")
	logger.Info(ctx, "hello")

	assert.Contains(t, buf.String(), "[run=run-42]")
}

func TestProgressEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Severity: INFO,
		Outputs:  []Output{NewConsoleOutput(false, WithColor(false), WithWriter(&buf))},
	})

	logger.Progress(context.Background(), 1, 500, -3.25, 0.241)

	out := buf.String()
	assert.Contains(t, out, "chain 1")
	assert.Contains(t, out, "iteration 500")
	assert.Contains(t, out, "accept=0.241")
}

func TestDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Severity:      INFO,
		Outputs:       []Output{NewConsoleOutput(false, WithColor(false), WithWriter(&buf))},
		DefaultFields: map[string]interface{}{"method": "adaptive"},
	})

	logger.Info(context.Background(), "starting")
	assert.Contains(t, buf.String(), "method=adaptive")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	out, err := NewFileOutput(path)
	require.NoError(t, err)

	logger := NewLogger(Config{Severity: INFO, Outputs: []Output{out}})
	logger.Progress(context.Background(), 0, 10, -1.5, 0.3)
	require.NoError(t, out.Sync())
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry fileEntry
	line := strings.TrimSpace(string(data))
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "INFO", entry.Severity)
	assert.Equal(t, 0, entry.Chain)
	assert.Equal(t, 10, entry.Iteration)
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))
}

func TestGlobalLogger(t *testing.T) {
	custom := NewLogger(Config{Severity: ERROR})
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())

	SetLogger(nil)
	assert.NotNil(t, GetLogger(), "GetLogger should lazily construct a default")
}
