package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "LABGRADE_LOG"

// DefaultPath returns the log file location under XDG_STATE_HOME.
func DefaultPath(app string) string {
	return filepath.Join(xdg.StateHome, app, app+".log")
}

func levelFromString(s string) (l slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug, true
	case "info", "inf", "":
		return slog.LevelInfo, true
	case "warn", "wrn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a text logger writing to w. Unknown levels fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	loglevel, _ := levelFromString(level)

	// slog defaults to logging in the order of time, level, msg, and other attributes.
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: loglevel})
	return slog.New(handler)
}

// InitLogger opens the log file at path and installs it as the default slog
// logger. The caller closes the returned file.
func InitLogger(path, level string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	if _, ok := levelFromString(level); !ok {
		defer slog.Warn("Unknown log level, using info", "level", level)
	}

	slog.SetDefault(New(logFile, level))
	return logFile, nil
}
