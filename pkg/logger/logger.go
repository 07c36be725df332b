// Package logger builds the process-wide slog.Logger. Text output goes
// through charmbracelet/log for terminals; json output uses a line-oriented
// handler meant for log shippers.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	charmLog "github.com/charmbracelet/log"

	"github.com/jalleeeee/profiler/pkg/config"
)

const (
	envLogFormat    = "PROFILER_LOG_FORMAT"
	envLogLevel     = "PROFILER_LOG_LEVEL"
	envLogAddSource = "PROFILER_LOG_ADD_SOURCE"
)

const (
	defaultFormat = "text"
	defaultLevel  = "info"
)

// New builds the logger described by cfg. PROFILER_LOG_* environment
// variables take precedence over file settings.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg config.LoggingConfig, writer io.Writer) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if value := strings.TrimSpace(os.Getenv(envLogFormat)); value != "" {
		format = strings.ToLower(value)
	}
	if format == "" {
		format = defaultFormat
	}
	if format != "json" && format != "text" {
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	addSource := cfg.AddSource
	if env := strings.TrimSpace(os.Getenv(envLogAddSource)); env != "" {
		addSource = parseBool(env)
	}

	if format == "json" {
		return slog.New(&jsonHandler{
			level:     level,
			addSource: addSource,
			writer:    writer,
			mu:        &sync.Mutex{},
		}), nil
	}

	pretty := charmLog.NewWithOptions(writer, charmLog.Options{
		Level:           charmLevel(level),
		ReportTimestamp: true,
		ReportCaller:    addSource,
		Formatter:       charmLog.TextFormatter,
	})
	return slog.New(pretty), nil
}

func charmLevel(level slog.Level) charmLog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmLog.DebugLevel
	case level <= slog.LevelInfo:
		return charmLog.InfoLevel
	case level <= slog.LevelWarn:
		return charmLog.WarnLevel
	default:
		return charmLog.ErrorLevel
	}
}

func parseLevel(input string) (slog.Level, error) {
	levelText := strings.ToLower(strings.TrimSpace(input))
	if value := strings.TrimSpace(os.Getenv(envLogLevel)); value != "" {
		levelText = strings.ToLower(value)
	}
	if levelText == "" {
		levelText = defaultLevel
	}

	switch levelText {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", levelText)
	}
}

func parseBool(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
