package util

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	stdlog "log"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// LogLevel represents available log levels
type LogLevel = int

// Log levels
const (
	TraceLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ZerologLevel maps a LogLevel onto zerolog's levels. Unknown values map to Info.
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// base is the logger every component logger derives from. It discards
// everything until InitializeLogger or SetLogger runs, so importing the
// library packages never writes to stderr.
var base atomic.Pointer[zerolog.Logger]

func init() {
	SetLogger(zerolog.Nop())
}

// SetLogger replaces the base logger. zerolog's global log.Logger is not touched.
func SetLogger(l zerolog.Logger) {
	base.Store(&l)
}

// InitializeLogger sets up the base logger writing human readable lines
// to stderr. Stdout is left alone since CLI commands print file contents there.
func InitializeLogger(level LogLevel) {
	InitializeLoggerTo(os.Stderr, level)
}

// InitializeLoggerTo is InitializeLogger with an explicit destination
func InitializeLoggerTo(out io.Writer, level LogLevel) {
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}

	ctx := zerolog.New(output).Level(ZerologLevel(level)).With().Timestamp()
	if level == TraceLevel {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	SetLogger(logger)
	logger.Debug().Msg("Logger initialized")
}

// GetLogger returns a configured logger for a specific component
func GetLogger(component string) zerolog.Logger {
	return base.Load().With().Str("component", component).Logger()
}

// zerologWriter wraps zerolog to implement io.Writer for stdlog
type zerologWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func (w zerologWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	// go-fuse prefixes debug lines with a timestamp
	if idx := strings.LastIndex(msg, ": "); idx != -1 && idx < len(msg)-2 {
		msg = msg[idx+2:]
	}
	w.logger.WithLevel(w.level).Msg(msg)

	return len(p), nil
}

// NewLogLogger returns a stdlog.Logger that routes to zerolog, for
// libraries such as go-fuse that only accept *log.Logger
func NewLogLogger(component string, lvl LogLevel) *stdlog.Logger {
	writer := zerologWriter{logger: GetLogger(component), level: ZerologLevel(lvl)}
	return stdlog.New(writer, "", 0)
}
