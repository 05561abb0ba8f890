// Package logger wraps zerolog behind a small façade so the rest of the
// application never imports zerolog directly.
package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/startificial/requireflow/internal/errors"
)

var log = zerolog.Nop()

// LogEvent carries a single structured entry under construction. The
// underlying zerolog event is embedded so its field helpers (Str, Int,
// Err, Dur) stay available to callers.
type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) { e.Event.Msg(msg) }

func (e *LogEvent) Send() { e.Event.Send() }

// Init configures the package logger. Interactive runs get a console
// writer; service runs emit plain JSON so journald or a container
// runtime can ingest the stream. Unknown level names fall back to info.
func Init(level string, isService bool) {
	var out io.Writer = os.Stdout
	if !isService {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log = zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zerolog.DebugLevel
	case "warning", "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// IsService reports whether the process appears to run unattended, under
// systemd, in a container, or detached from a terminal.
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

func Debug() *LogEvent { return &LogEvent{log.Debug()} }

func Info() *LogEvent { return &LogEvent{log.Info()} }

func Warn() *LogEvent { return &LogEvent{log.Warn()} }

func Error() *LogEvent { return &LogEvent{log.Error()} }

// Fatal logs the entry and exits the program.
func Fatal() *LogEvent { return &LogEvent{log.Fatal()} }

// ErrorWithCode logs err with its code, status and operational flag
// attached as structured fields.
func ErrorWithCode(err *errors.AppError) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(err.Code)).
		Int("status_code", err.StatusCode).
		Bool("operational", err.Operational).
		AnErr("cause", err.Err)}
}
