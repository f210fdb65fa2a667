package log

import (
	"io"

	"github.com/kataras/golog"
)

// gologLevels maps each LogLevel to the golog level name.
var gologLevels = [...]string{"debug", "info", "warn", "error", "disable"}

// GologLogger adapts a kataras/golog logger. Messages below its level are
// dropped before formatting.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger wraps logger at LogLevelInfo. The golog level is left as
// configured by the caller until SetLevel is used.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger, level: LogLevelInfo}
}

// NewGologLoggerWithLevel creates a golog logger with the "[searchflow] "
// prefix and applies level to both sides.
func NewGologLoggerWithLevel(level LogLevel) *GologLogger {
	g := golog.New()
	g.SetPrefix(prefix)
	l := NewGologLogger(g)
	l.SetLevel(level)
	return l
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LogLevelDebug {
		l.logger.Debugf(format, v...)
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LogLevelInfo {
		l.logger.Infof(format, v...)
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LogLevelWarn {
		l.logger.Warnf(format, v...)
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LogLevelError {
		l.logger.Errorf(format, v...)
	}
}

// SetLevel changes the level. Unknown levels fall back to info.
func (l *GologLogger) SetLevel(level LogLevel) {
	if level < 0 || int(level) >= len(gologLevels) {
		level = LogLevelInfo
	}
	l.level = level
	l.logger.SetLevel(gologLevels[level])
}

func (l *GologLogger) GetLevel() LogLevel {
	return l.level
}

// SetOutput redirects the underlying golog logger.
func (l *GologLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}
