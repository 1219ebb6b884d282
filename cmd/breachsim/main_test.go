package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "run", "--tick-delay", "0", "--results-dir", dir)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "RUN SUMMARY") {
		t.Errorf("missing summary:\n%s", out)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Errorf("expected one JSON report, got %v", entries)
	}
}

func TestBatchCommand(t *testing.T) {
	out, err := execute(t, "batch", "--runs", "20", "--workers", "2", "--results-dir", t.TempDir())
	if err != nil {
		t.Fatalf("batch failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Runs:            20") {
		t.Errorf("missing run count:\n%s", out)
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "web-to-db") || !strings.Contains(out, "No warnings") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommandRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("steps:\n  - id: a\n    action: exploit\n    params: { base_success: 3 }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "validate", "--scenario", path); err == nil {
		t.Error("expected validation error")
	}
}

func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(context.Background())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDebugBannerUsesCommandOutput(t *testing.T) {
	out, _, err := executeSplit(t, "validate", "--debug")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Debug logging: ENABLED") {
		t.Errorf("debug banner missing from command output:\n%s", out)
	}
}

func TestLogFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantLog bool
	}{
		{
			name:    "default level hides run results",
			args:    nil,
			want:    "finished",
			wantLog: false,
		},
		{
			name:    "info level writes JSON entries",
			args:    []string{"--log-level", "info"},
			want:    `"run_id":`,
			wantLog: true,
		},
		{
			name:    "plain entries",
			args:    []string{"--log-level", "INFO", "--log-plain"},
			want:    "[INFO] Scenario web-to-db finished",
			wantLog: true,
		},
		{
			name:    "debug overrides level",
			args:    []string{"--log-level", "error", "--debug"},
			want:    "Scenario run finished",
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--quiet", "--tick-delay", "0", "--results-dir", t.TempDir()}, tt.args...)
			_, errOut, err := executeSplit(t, args...)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got := strings.Contains(errOut, tt.want); got != tt.wantLog {
				t.Errorf("log output contains %q = %v, want %v\n%s", tt.want, got, tt.wantLog, errOut)
			}
		})
	}
}

func TestRunFlagsConfig(t *testing.T) {
	cfg := runFlags{tickDelay: -1}.config()
	if cfg.TickDelay != nil {
		t.Error("negative tick delay should defer to the scenario")
	}

	cfg = runFlags{tickDelay: 0.25}.config()
	if cfg.TickDelay == nil || *cfg.TickDelay != 250*time.Millisecond {
		t.Errorf("TickDelay = %v, want 250ms", cfg.TickDelay)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("BREACHSIM_TEST_KEY", "")
	if got := envOr("BREACHSIM_TEST_KEY", "def"); got != "def" {
		t.Errorf("envOr() = %q, want def", got)
	}
	t.Setenv("BREACHSIM_TEST_KEY", "set")
	if got := envOr("BREACHSIM_TEST_KEY", "def"); got != "set" {
		t.Errorf("envOr() = %q, want set", got)
	}
}
