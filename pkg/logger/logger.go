package logger

import (
	"log"
	"sync"

	"github.com/fatih/color"
)

// Level represents the severity level of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	NoticeLevel
	ErrorLevel
)

// Network identifies which settlement layer a log line relates to.
type Network int

const (
	None Network = iota
	Eth
	Imx
)

var networkPrefixes = map[Network]string{
	None: "",
	Eth:  "[ETH] ",
	Imx:  "[IMX] ",
}

var colors = map[Network]color.Attribute{
	None: color.FgWhite,
	Eth:  color.FgHiGreen,
	Imx:  color.FgHiBlue,
}

// Logger is a simple interface for logging messages.
type Logger interface {
	// Info logs an informational message.
	Info(format string, args ...interface{})
	InfoWithNetwork(network Network, format string, args ...interface{})

	// Error logs an error message.
	Error(format string, args ...interface{})
	ErrorWithNetwork(network Network, format string, args ...interface{})

	// Debug logs a debug message.
	Debug(format string, args ...interface{})
	DebugWithNetwork(network Network, format string, args ...interface{})

	// Notice logs a notice message.
	Notice(format string, args ...interface{})
	NoticeWithNetwork(network Network, format string, args ...interface{})
}

// EmptyLogger is a simple implementation of the Logger interface that does nothing.
type EmptyLogger struct{}

var _ Logger = (*EmptyLogger)(nil)

func (l *EmptyLogger) Info(_ string, _ ...interface{})                         {}
func (l *EmptyLogger) InfoWithNetwork(_ Network, _ string, _ ...interface{})   {}
func (l *EmptyLogger) Error(_ string, _ ...interface{})                        {}
func (l *EmptyLogger) ErrorWithNetwork(_ Network, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Debug(_ string, _ ...interface{})                        {}
func (l *EmptyLogger) DebugWithNetwork(_ Network, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Notice(_ string, _ ...interface{})                       {}
func (l *EmptyLogger) NoticeWithNetwork(_ Network, _ string, _ ...interface{}) {}

// StdLogger is a standard implementation of the Logger interface that logs messages to the console.
type StdLogger struct {
	enableColoring bool
	level          Level
	mu             sync.Mutex
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(enableColoring bool, level Level) *StdLogger {
	return &StdLogger{
		enableColoring: enableColoring,
		level:          level,
	}
}

// formatMessage formats the log message with the appropriate log level, network prefix, and coloring if enabled.
func (l *StdLogger) formatMessage(level Level, network Network, format string) string {
	prefix := networkPrefixes[network]
	if l.enableColoring {
		prefix = color.New(colors[network]).Sprint(prefix)
	}

	var levelStr string
	switch level {
	case DebugLevel:
		levelStr = "[DEBUG]  "
	case InfoLevel:
		levelStr = "[INFO]   "
	case NoticeLevel:
		levelStr = "[NOTICE] "
	case ErrorLevel:
		levelStr = "[ERROR]  "
	}

	return levelStr + prefix + format
}

func (l *StdLogger) logf(level Level, network Network, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= level {
		log.Printf(l.formatMessage(level, network, format), args...)
	}
}

func (l *StdLogger) Info(format string, args ...interface{}) {
	l.logf(InfoLevel, None, format, args...)
}

func (l *StdLogger) InfoWithNetwork(network Network, format string, args ...interface{}) {
	l.logf(InfoLevel, network, format, args...)
}

func (l *StdLogger) Error(format string, args ...interface{}) {
	l.logf(ErrorLevel, None, format, args...)
}

func (l *StdLogger) ErrorWithNetwork(network Network, format string, args ...interface{}) {
	l.logf(ErrorLevel, network, format, args...)
}

func (l *StdLogger) Debug(format string, args ...interface{}) {
	l.logf(DebugLevel, None, format, args...)
}

func (l *StdLogger) DebugWithNetwork(network Network, format string, args ...interface{}) {
	l.logf(DebugLevel, network, format, args...)
}

func (l *StdLogger) Notice(format string, args ...interface{}) {
	l.logf(NoticeLevel, None, format, args...)
}

func (l *StdLogger) NoticeWithNetwork(network Network, format string, args ...interface{}) {
	l.logf(NoticeLevel, network, format, args...)
}
