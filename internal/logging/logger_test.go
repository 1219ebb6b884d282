package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

// captureLogs redirects the package output for the duration of a test
func captureLogs(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetFlags(0)
	SetOutput(&buf)
	SetLogLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		log.SetFlags(flags)
		SetLogLevel(LogLevelInfo)
		SetStructured(true)
	})
	return &buf
}

func decodeEntries(t *testing.T, buf *bytes.Buffer) []StructuredLogEntry {
	t.Helper()
	var entries []StructuredLogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry StructuredLogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{" error ", LogLevelError},
		{"bogus", LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t, LogLevelWarn)

	LogDebug("hidden")
	LogInfo("hidden too")
	LogWarn("shown")
	LogError("also shown", errors.New("boom"))

	entries := decodeEntries(t, buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %s", len(entries), buf.String())
	}
	if entries[0].Level != LogLevelWarn || entries[1].Level != LogLevelError {
		t.Errorf("levels = %s, %s", entries[0].Level, entries[1].Level)
	}
	if entries[1].Error != "boom" {
		t.Errorf("Error = %q, want boom", entries[1].Error)
	}
}

func TestKnownFieldsArePromoted(t *testing.T) {
	buf := captureLogs(t, LogLevelDebug)

	LogRunResult("web-to-db", "run-1", "exfiltrated", 4, 1)

	entries := decodeEntries(t, buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Scenario != "web-to-db" || entry.RunID != "run-1" {
		t.Errorf("scenario/run_id not promoted: %+v", entry)
	}
	if entry.Context["result"] != "exfiltrated" {
		t.Errorf("context result = %v", entry.Context["result"])
	}
}

func TestPlainOutputWhenStructuredDisabled(t *testing.T) {
	buf := captureLogs(t, LogLevelInfo)
	SetStructured(false)

	LogInfo("plain message")

	if got := strings.TrimSpace(buf.String()); got != "[INFO] plain message" {
		t.Errorf("output = %q", got)
	}
}
