package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atomicstack/nui-overlay/internal/app"
	"github.com/atomicstack/nui-overlay/internal/config"
	"github.com/atomicstack/nui-overlay/internal/logging"
	"github.com/atomicstack/nui-overlay/internal/logging/events"
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Environ())
	if err := cmd.ExecuteContext(ctx); err != nil {
		code := 1
		if exit, ok := err.(*exitError); ok {
			code = exit.code
		}
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(code)
	}
}

func newRootCmd(environ []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nui-overlay",
		Short: "Terminal overlay that mirrors host-defined menus",
		Long: `nui-overlay renders the menus a host pushes over a websocket and reports
navigation back to the host with HTTP posts.

Examples:
  nui-overlay                                  # interactive overlay
  nui-overlay --headless --journal run.db      # engine only, journal every message
  nui-overlay replay script.yaml               # replay a recorded host script`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	loader := config.Register(cmd.PersistentFlags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(loader, environ)
		if err != nil {
			return err
		}
		err = app.Run(cmd.Context(), cfg.App)
		events.App.Stop(err)
		return err
	}
	cmd.AddCommand(newReplayCmd(loader, environ))
	return cmd
}

func newReplayCmd(loader *config.Loader, environ []string) *cobra.Command {
	return &cobra.Command{
		Use:   "replay [script.yaml]",
		Short: "Feed a YAML script of host messages through the engine and print what it sends",
		Long: `replay runs a scripted sequence of host messages against a fresh store and
prints the outbound messages each step produced. Reads stdin when no script
is given or the script is "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(loader, environ)
			if err != nil {
				return err
			}
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				in = f
			}
			return app.Replay(cmd.Context(), in, cmd.OutOrStdout(), cfg.App.WindowLength)
		},
	}
}

// setup resolves configuration and configures logging before any command
// does real work. Configuration errors exit with status 2.
func setup(loader *config.Loader, environ []string) (config.Config, error) {
	cfg, err := loader.Resolve(os.Args[1:], environ)
	if err != nil {
		return config.Config{}, &exitError{code: 2, err: fmt.Errorf("configuration: %w", err)}
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	traceStartup(cfg)
	return cfg, nil
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":   cfg.Args,
		"flags":  flags,
		"config": cfg,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		} else {
			entry.IsTerminal = false
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
