// Package logging exposes the process-wide logger used across the editor.
package logging

import (
	"io"
	"os"

	"github.com/DragonRuins/hubdoc/pkg/resync"
	"github.com/rs/zerolog"
)

var (
	// Lazy-load and ensure a single instantiation
	loggerOnce      resync.Once
	loggerSingleton *Logger
)

type VerboseLevel int

const (
	VerboseOff VerboseLevel = iota
	VerboseInfo
	VerboseDebug
	VerboseTrace
)

func CurrentLogger() *Logger {
	loggerOnce.Do(func() {
		loggerSingleton = NewLogger(os.Stderr)
	})
	return loggerSingleton
}

// Logger wraps a zerolog logger behind the verbose levels used by the CLI.
type Logger struct {
	verbose VerboseLevel
	zl      zerolog.Logger
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{
		verbose: VerboseOff,
		zl:      zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger(),
	}
}

// SetVerboseLevel overrides the default verbose level
func (l *Logger) SetVerboseLevel(level VerboseLevel) *Logger {
	l.verbose = level
	return l
}

// SetOutput redirects log lines, mainly useful from tests.
func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.zl = zerolog.New(w).With().Timestamp().Logger()
	return l
}

func (l *Logger) Fatalf(format string, v ...any) {
	l.zl.Fatal().Msgf(format, v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.zl.Warn().Msgf(format, v...)
}

func (l *Logger) Infof(format string, v ...any) {
	if l.verbose >= VerboseInfo {
		l.zl.Info().Msgf(format, v...)
	}
}

func (l *Logger) Debugf(format string, v ...any) {
	if l.verbose >= VerboseDebug {
		l.zl.Debug().Msgf(format, v...)
	}
}

func (l *Logger) Tracef(format string, v ...any) {
	if l.verbose >= VerboseTrace {
		l.zl.Trace().Msgf(format, v...)
	}
}
