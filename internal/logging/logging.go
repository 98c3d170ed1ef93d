package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultLogFile = "nui-overlay.log"

var (
	traceMu      sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	runID        = uuid.NewString()
)

// RunID identifies the current process in trace entries and the journal.
func RunID() string {
	return runID
}

// Error appends err to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	path, _ := settings()
	appendLog(path, "logging", func(f *os.File) error {
		log.New(f, "", log.LstdFlags).Printf("[%s] %v", runID, err)
		return nil
	})
}

// Errorf formats and logs an error in one step.
func Errorf(format string, args ...interface{}) {
	Error(fmt.Errorf(format, args...))
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	traceMu.Lock()
	traceEnabled = enabled
	traceMu.Unlock()
}

// TraceEnabled reports whether trace entries are being written.
func TraceEnabled() bool {
	_, enabled := settings()
	return enabled
}

type traceEntry struct {
	Time    time.Time   `json:"time"`
	Run     string      `json:"run"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	path, enabled := settings()
	if !enabled {
		return
	}
	entry := traceEntry{Time: time.Now().UTC(), Run: runID, Event: event, Payload: payload}
	appendLog(path, "trace logging", func(f *os.File) error {
		return json.NewEncoder(f).Encode(entry)
	})
}

func settings() (string, bool) {
	traceMu.Lock()
	defer traceMu.Unlock()
	return logPath, traceEnabled
}

// appendLog opens path for appending and hands it to write. Failures go to
// stderr.
func appendLog(path, what string, write func(*os.File) error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", what, err)
		return
	}
	defer f.Close()
	if err := write(f); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", what, err)
	}
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	traceMu.Lock()
	defer traceMu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}
