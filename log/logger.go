package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kataras/golog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone disables output.
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelNone:
		return "disable"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// ParseLevel maps a level name to a Level. Unknown names are an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "disable", "off":
		return LevelNone, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the leveled, printf-style logger used across the module.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// Options configures New.
type Options struct {
	Level  Level
	Prefix string
	// Output defaults to os.Stderr.
	Output io.Writer
	// File, when set, additionally writes to a rotating log file.
	File string
	// MaxSizeMB and MaxBackups bound the rotating file. Zero values use
	// 10 MB and 3 backups.
	MaxSizeMB  int
	MaxBackups int
}

// GologLogger implements Logger over kataras/golog.
type GologLogger struct {
	logger *golog.Logger
	level  Level
	file   *lumberjack.Logger
}

var _ Logger = (*GologLogger)(nil)

// New creates a golog backed logger.
func New(opts Options) *GologLogger {
	g := golog.New()
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	g.SetOutput(out)
	if opts.Prefix != "" {
		g.SetPrefix(opts.Prefix)
	}

	l := &GologLogger{logger: g}
	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			Compress:   true,
		}
		g.AddOutput(l.file)
	}
	l.SetLevel(opts.Level)
	return l
}

// NewGologLogger wraps an existing golog.Logger at info level.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	l := &GologLogger{logger: logger}
	l.SetLevel(LevelInfo)
	return l
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LevelDebug {
		l.logger.Debugf(format, v...)
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LevelInfo {
		l.logger.Infof(format, v...)
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LevelWarn {
		l.logger.Warnf(format, v...)
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LevelError {
		l.logger.Errorf(format, v...)
	}
}

// SetLevel changes the level of both wrappers.
func (l *GologLogger) SetLevel(level Level) {
	l.level = level
	l.logger.SetLevel(level.String())
}

// Level returns the current level.
func (l *GologLogger) Level() Level {
	return l.level
}

// Close closes the rotating file, if any.
func (l *GologLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

var defaultLogger Logger = New(Options{Level: LevelInfo})

// SetDefault replaces the package-level logger.
func SetDefault(logger Logger) {
	if logger == nil {
		logger = NopLogger{}
	}
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}

func Debug(format string, v ...any) { defaultLogger.Debug(format, v...) }
func Info(format string, v ...any)  { defaultLogger.Info(format, v...) }
func Warn(format string, v ...any)  { defaultLogger.Warn(format, v...) }
func Error(format string, v ...any) { defaultLogger.Error(format, v...) }
