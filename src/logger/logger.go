package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// ParseLevel maps a config string to a Level. Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *log.Logger
	config interface{}
	level  atomic.Int32
	exit   func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. When config is an *models.MConfig
// its log_level sets the minimum level.
func NewLogger(config interface{}, name string) *Logger {
	l := &Logger{
		name:   name,
		logger: log.New(os.Stdout, "", log.LstdFlags),
		config: config,
		exit:   os.Exit,
	}
	level := LevelInfo
	if cfg, ok := config.(*models.MConfig); ok && cfg != nil {
		level = ParseLevel(cfg.LogLevel)
	}
	l.level.Store(int32(level))
	return l
}

// -----------------------------------------------------------------------------

// Named returns a logger sharing this one's output and level under a new name
func (l *Logger) Named(name string) *Logger {
	child := &Logger{
		name:   name,
		logger: l.logger,
		config: l.config,
		exit:   l.exit,
	}
	child.level.Store(l.level.Load())
	return child
}

// SetOutput redirects log lines, mostly for tests
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// SetLevel changes the minimum level
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *Logger) enabled(level Level) bool {
	return Level(l.level.Load()) <= level
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.enabled(LevelDebug) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] DEBUG: %s", l.name, msg)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	if !l.enabled(LevelWarning) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] WARNING: %s", l.name, msg)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	if !l.enabled(LevelInfo) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] INFO: %s", l.name, msg)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if !l.enabled(LevelError) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] ERROR: %s", l.name, msg)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	l.exit(1)
}
