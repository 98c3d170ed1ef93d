package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/nui-overlay/internal/app"
	"github.com/atomicstack/nui-overlay/internal/config"
	"github.com/atomicstack/nui-overlay/internal/testutil"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			HostURL:      "http://127.0.0.1:30120",
			WindowLength: 4,
			Width:        80,
			Height:       24,
			ShowFooter:   true,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"host":   "http://127.0.0.1:30120",
			"window": "4",
			"width":  "80",
			"height": "24",
			"footer": "true",
		},
		Args: []string{"--window", "4"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["host"] != "http://127.0.0.1:30120" {
		t.Fatalf("expected host flag, got %v", flagsValue["host"])
	}
	if flagsValue["window"] != "4" {
		t.Fatalf("expected window 4, got %v", flagsValue["window"])
	}
	if flagsValue["footer"] != "true" {
		t.Fatalf("expected footer flag true, got %v", flagsValue["footer"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}

	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if cfgValue.App != cfg.App {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}

func TestReplayCommandPrintsTable(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "main.log")
	cmd := newRootCmd([]string{"NUI_OVERLAY_LOG_FILE=" + logFile})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"replay", testutil.Testdata(t, "replay_basic.yaml")})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	testutil.AssertGolden(t, "replay_basic.golden", out.String())
}

func TestReplayCommandReadsStdin(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "main.log")
	cmd := newRootCmd([]string{"NUI_OVERLAY_LOG_FILE=" + logFile})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("messages:\n  - type: ready\n"))
	cmd.SetArgs([]string{"replay", "-"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if got := strings.Count(out.String(), "ready"); got != 3 {
		t.Fatalf("expected startup and reply ready rows, got:\n%s", out.String())
	}
}

func TestConfigurationErrorsExitWithTwo(t *testing.T) {
	cmd := newRootCmd([]string{"NUI_OVERLAY_WINDOW=0", "NUI_OVERLAY_LOG_FILE=" + filepath.Join(t.TempDir(), "main.log")})
	cmd.SetArgs([]string{"replay", "-"})
	cmd.SetIn(strings.NewReader(""))
	err := cmd.Execute()
	exit, ok := err.(*exitError)
	if !ok {
		t.Fatalf("expected exit error, got %v", err)
	}
	if exit.code != 2 {
		t.Fatalf("expected exit code 2, got %d", exit.code)
	}
}
