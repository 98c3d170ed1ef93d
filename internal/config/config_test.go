package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.HostURL != DefaultHost || cfg.App.Route != DefaultRoute || cfg.App.InboundURL != DefaultInbound {
		t.Fatalf("unexpected endpoints %#v", cfg.App)
	}
	if cfg.App.WindowLength != DefaultWindow {
		t.Fatalf("expected window %d, got %d", DefaultWindow, cfg.App.WindowLength)
	}
	if cfg.App.SendTimeout != DefaultSendTimeout {
		t.Fatalf("expected send timeout %s, got %s", DefaultSendTimeout, cfg.App.SendTimeout)
	}
	if cfg.App.Headless || cfg.App.ShowFooter || cfg.Logging.Trace {
		t.Fatalf("expected boolean options off, got %#v", cfg)
	}
}

func TestLoadArgsFlags(t *testing.T) {
	args := []string{
		"--host", "http://localhost:9000",
		"--route", "nui",
		"--window", "4",
		"--width", "80",
		"--height", "24",
		"--footer",
		"--headless",
		"--journal", "journal.db",
		"--send-timeout", "750ms",
		"--trace",
		"--log-file", "trace.log",
	}
	cfg, err := LoadArgs(args, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app := cfg.App
	if app.HostURL != "http://localhost:9000" || app.Route != "nui" {
		t.Fatalf("unexpected endpoints %#v", app)
	}
	if app.WindowLength != 4 || app.Width != 80 || app.Height != 24 {
		t.Fatalf("unexpected dimensions %#v", app)
	}
	if !app.ShowFooter || !app.Headless || app.JournalPath != "journal.db" {
		t.Fatalf("unexpected options %#v", app)
	}
	if app.SendTimeout != 750*time.Millisecond {
		t.Fatalf("expected 750ms timeout, got %s", app.SendTimeout)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "trace.log" {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}
	if cfg.Flags["window"] != "4" || cfg.Flags["sendTimeout"] != "750ms" {
		t.Fatalf("unexpected flag summary %#v", cfg.Flags)
	}
	if len(cfg.Args) != len(args) {
		t.Fatalf("expected args to be recorded, got %v", cfg.Args)
	}
}

func TestLoadArgsEnvironment(t *testing.T) {
	env := []string{
		envHost + "=https://host.example",
		envWindow + "=6",
		envShowFooter + "=true",
		envInbound + "=",
		envSendTimeout + "=2s",
		envTrace + "=1",
		envLogFile + "=env.log",
	}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.HostURL != "https://host.example" {
		t.Fatalf("expected env host, got %q", cfg.App.HostURL)
	}
	if cfg.App.WindowLength != 6 || !cfg.App.ShowFooter {
		t.Fatalf("unexpected env values %#v", cfg.App)
	}
	if cfg.App.InboundURL != "" {
		t.Fatalf("expected empty inbound to disable the listener, got %q", cfg.App.InboundURL)
	}
	if cfg.App.SendTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.App.SendTimeout)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "env.log" {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	env := []string{envWindow + "=6", envHost + "=http://env:1"}
	cfg, err := LoadArgs([]string{"--window", "3"}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.WindowLength != 3 {
		t.Fatalf("expected flag window 3, got %d", cfg.App.WindowLength)
	}
	if cfg.App.HostURL != "http://env:1" {
		t.Fatalf("expected env host, got %q", cfg.App.HostURL)
	}
}

func TestInvalidEnvironmentFallsBack(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{envWindow + "=lots", envShowFooter + "=maybe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.WindowLength != DefaultWindow || cfg.App.ShowFooter {
		t.Fatalf("expected defaults, got %#v", cfg.App)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.jsonc")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigFileSitsBelowEnvironment(t *testing.T) {
	path := writeConfig(t, `{
		// local host bridge
		"host": "http://file:2",
		"window": 7,
		"footer": true,
		"sendTimeout": "3s", /* generous */
		"journal": "file.db",
	}`)
	env := []string{envConfig + "=" + path, envWindow + "=8"}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("expected config file %q, got %q", path, cfg.File)
	}
	if cfg.App.HostURL != "http://file:2" || !cfg.App.ShowFooter || cfg.App.JournalPath != "file.db" {
		t.Fatalf("expected file values, got %#v", cfg.App)
	}
	if cfg.App.WindowLength != 8 {
		t.Fatalf("expected env window to win, got %d", cfg.App.WindowLength)
	}
	if cfg.App.SendTimeout != 3*time.Second {
		t.Fatalf("expected file timeout, got %s", cfg.App.SendTimeout)
	}

	cfg, err = LoadArgs([]string{"--config", path, "--footer=false", "--send-timeout", "1s"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.ShowFooter || cfg.App.SendTimeout != time.Second {
		t.Fatalf("expected flags to win, got %#v", cfg.App)
	}
}

func TestConfigFileErrors(t *testing.T) {
	if _, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.jsonc")}, nil); err == nil {
		t.Fatal("expected missing file error")
	}
	bad := writeConfig(t, `{"window": "wide"}`)
	if _, err := LoadArgs([]string{"--config", bad}, nil); err == nil {
		t.Fatal("expected parse error")
	}
	badTimeout := writeConfig(t, `{"sendTimeout": "soon"}`)
	if _, err := LoadArgs([]string{"--config", badTimeout}, nil); err == nil || !strings.Contains(err.Error(), "sendTimeout") {
		t.Fatalf("expected sendTimeout error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string][]string{
		"window":  {"--window", "0"},
		"width":   {"--width", "-1"},
		"height":  {"--height", "-2"},
		"timeout": {"--send-timeout", "0s"},
		"host":    {"--host", "localhost:9000"},
		"inbound": {"--inbound", "http://127.0.0.1/nui"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadArgs(args, nil); err == nil {
				t.Fatalf("expected %v to be rejected", args)
			}
		})
	}
}

func TestUnknownFlagFails(t *testing.T) {
	if _, err := LoadArgs([]string{"--socket", "x"}, nil); err == nil {
		t.Fatal("expected unknown flag error")
	}
}
