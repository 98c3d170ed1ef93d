package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/atomicstack/nui-overlay/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the JSONC config file that was read, if any.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envPrefix      = "NUI_OVERLAY_"
	envConfig      = envPrefix + "CONFIG"
	envHost        = envPrefix + "HOST"
	envRoute       = envPrefix + "ROUTE"
	envInbound     = envPrefix + "INBOUND"
	envWindow      = envPrefix + "WINDOW"
	envWidth       = envPrefix + "WIDTH"
	envHeight      = envPrefix + "HEIGHT"
	envShowFooter  = envPrefix + "FOOTER"
	envHeadless    = envPrefix + "HEADLESS"
	envJournal     = envPrefix + "JOURNAL"
	envSendTimeout = envPrefix + "SEND_TIMEOUT"
	envTrace       = envPrefix + "TRACE"
	envLogFile     = envPrefix + "LOG_FILE"
)

const (
	DefaultHost        = "http://127.0.0.1:30120"
	DefaultRoute       = "message"
	DefaultInbound     = "ws://127.0.0.1:30120/nui"
	DefaultWindow      = 10
	DefaultSendTimeout = 5 * time.Second
)

// fileConfig mirrors the JSONC config file. Absent keys stay nil so they
// do not shadow defaults.
type fileConfig struct {
	Host        *string `json:"host"`
	Route       *string `json:"route"`
	Inbound     *string `json:"inbound"`
	Window      *int    `json:"window"`
	Width       *int    `json:"width"`
	Height      *int    `json:"height"`
	Footer      *bool   `json:"footer"`
	Headless    *bool   `json:"headless"`
	Journal     *string `json:"journal"`
	SendTimeout *string `json:"sendTimeout"`
	Trace       *bool   `json:"trace"`
	LogFile     *string `json:"logFile"`
}

// Loader binds the command-line flags and resolves them against the
// environment and the optional config file.
type Loader struct {
	fs *pflag.FlagSet

	configPath  string
	host        string
	route       string
	inbound     string
	window      int
	width       int
	height      int
	footer      bool
	headless    bool
	journal     string
	sendTimeout time.Duration
	trace       bool
	logFile     string
}

// Register adds the configuration flags to fs.
func Register(fs *pflag.FlagSet) *Loader {
	l := &Loader{fs: fs}
	fs.StringVar(&l.configPath, "config", "", "path to a JSONC config file")
	fs.StringVar(&l.host, "host", DefaultHost, "base URL of the host; messages are posted to <host>/<route>")
	fs.StringVar(&l.route, "route", DefaultRoute, "route outbound messages are posted to")
	fs.StringVar(&l.inbound, "inbound", DefaultInbound, "websocket URL the host pushes messages on (empty disables)")
	fs.IntVar(&l.window, "window", DefaultWindow, "default number of visible buttons per menu")
	fs.IntVar(&l.width, "width", 0, "desired viewport width in cells (0 uses terminal width)")
	fs.IntVar(&l.height, "height", 0, "desired viewport height in rows (0 uses terminal height)")
	fs.BoolVar(&l.footer, "footer", false, "enable footer hint row")
	fs.BoolVar(&l.headless, "headless", false, "run without the terminal UI")
	fs.StringVar(&l.journal, "journal", "", "path to a SQLite message journal (empty disables)")
	fs.DurationVar(&l.sendTimeout, "send-timeout", DefaultSendTimeout, "timeout for each message posted to the host")
	fs.BoolVar(&l.trace, "trace", false, "enable verbose JSON trace logging")
	fs.StringVar(&l.logFile, "log-file", "", "path to the log file")
	return l
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("nui-overlay", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	l := Register(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return l.Resolve(args, environ)
}

// Resolve combines parsed flags, environ and the config file. A flag set on
// the command line wins over the environment, which wins over the file.
func (l *Loader) Resolve(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	path := l.pickString("config", l.configPath, env, envConfig, nil)
	var file fileConfig
	if path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		file = loaded
	}

	timeout := l.sendTimeout
	if !l.fs.Changed("send-timeout") {
		if file.SendTimeout != nil {
			parsed, err := time.ParseDuration(*file.SendTimeout)
			if err != nil {
				return Config{}, fmt.Errorf("config %s: sendTimeout: %w", path, err)
			}
			timeout = parsed
		}
		timeout = envOrDuration(env, envSendTimeout, timeout)
	}

	cfg := Config{
		App: app.Config{
			HostURL:      l.pickString("host", l.host, env, envHost, file.Host),
			Route:        l.pickString("route", l.route, env, envRoute, file.Route),
			InboundURL:   l.pickString("inbound", l.inbound, env, envInbound, file.Inbound),
			WindowLength: l.pickInt("window", l.window, env, envWindow, file.Window),
			Width:        l.pickInt("width", l.width, env, envWidth, file.Width),
			Height:       l.pickInt("height", l.height, env, envHeight, file.Height),
			ShowFooter:   l.pickBool("footer", l.footer, env, envShowFooter, file.Footer),
			Headless:     l.pickBool("headless", l.headless, env, envHeadless, file.Headless),
			JournalPath:  l.pickString("journal", l.journal, env, envJournal, file.Journal),
			SendTimeout:  timeout,
		},
		Logging: Logging{
			FilePath: l.pickString("log-file", l.logFile, env, envLogFile, file.LogFile),
			Trace:    l.pickBool("trace", l.trace, env, envTrace, file.Trace),
		},
		File: path,
		Args: append([]string(nil), args...),
	}
	cfg.Flags = map[string]string{
		"config":      path,
		"host":        cfg.App.HostURL,
		"route":       cfg.App.Route,
		"inbound":     cfg.App.InboundURL,
		"window":      strconv.Itoa(cfg.App.WindowLength),
		"width":       strconv.Itoa(cfg.App.Width),
		"height":      strconv.Itoa(cfg.App.Height),
		"footer":      strconv.FormatBool(cfg.App.ShowFooter),
		"headless":    strconv.FormatBool(cfg.App.Headless),
		"journal":     cfg.App.JournalPath,
		"sendTimeout": cfg.App.SendTimeout.String(),
		"trace":       strconv.FormatBool(cfg.Logging.Trace),
		"logFile":     cfg.Logging.FilePath,
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (l *Loader) pickString(name, flagValue string, env map[string]string, key string, file *string) string {
	if l.fs.Changed(name) {
		return flagValue
	}
	if v, ok := env[key]; ok {
		return v
	}
	if file != nil {
		return *file
	}
	return flagValue
}

func (l *Loader) pickInt(name string, flagValue int, env map[string]string, key string, file *int) int {
	if l.fs.Changed(name) {
		return flagValue
	}
	fallback := flagValue
	if file != nil {
		fallback = *file
	}
	return envOrInt(env, key, fallback)
}

func (l *Loader) pickBool(name string, flagValue bool, env map[string]string, key string, file *bool) bool {
	if l.fs.Changed(name) {
		return flagValue
	}
	fallback := flagValue
	if file != nil {
		fallback = *file
	}
	return envOrBool(env, key, fallback)
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects configurations the overlay cannot run with.
func Validate(cfg Config) error {
	if cfg.App.WindowLength < 1 {
		return fmt.Errorf("window must be >= 1 (got %d)", cfg.App.WindowLength)
	}
	if cfg.App.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", cfg.App.Width)
	}
	if cfg.App.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", cfg.App.Height)
	}
	if cfg.App.SendTimeout <= 0 {
		return fmt.Errorf("send-timeout must be positive (got %s)", cfg.App.SendTimeout)
	}
	if err := checkURL("host", cfg.App.HostURL, "http", "https"); err != nil {
		return err
	}
	if cfg.App.InboundURL != "" {
		if err := checkURL("inbound", cfg.App.InboundURL, "ws", "wss"); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(name, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for _, scheme := range schemes {
		if u.Scheme == scheme && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s must be a %s URL (got %q)", name, strings.Join(schemes, " or "), raw)
}
