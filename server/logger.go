package server

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// LogContext ties a log message to the benchmark job that produced it
type LogContext struct {
	JobID string `json:"jobId"`
}

// Logger provides structured logging with proper output streams
type Logger struct {
	debug    *log.Logger
	info     *log.Logger
	warn     *log.Logger
	error    *log.Logger
	fatal    *log.Logger
	jsonLogs bool
}

// JSONLogEntry represents a structured log entry for log aggregation
type JSONLogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   *LogContext            `json:"context,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Global logger instance
var AppLogger *Logger

// NewLogger creates a new structured logger. Normal logs go to stdout,
// errors to stderr; JSON_LOGS=true switches to one JSON object per line.
func NewLogger() *Logger {
	jsonLogs := os.Getenv("JSON_LOGS") == "true"

	return &Logger{
		debug:    log.New(os.Stdout, "", 0),
		info:     log.New(os.Stdout, "", 0),
		warn:     log.New(os.Stdout, "", 0),
		error:    log.New(os.Stderr, "", 0),
		fatal:    log.New(os.Stderr, "", 0),
		jsonLogs: jsonLogs,
	}
}

func (l *Logger) write(target *log.Logger, level LogLevel, message string, ctx *LogContext, fields map[string]interface{}) {
	if l.jsonLogs {
		entry := JSONLogEntry{
			Timestamp: time.Now().Format(time.RFC3339),
			Level:     level.String(),
			Message:   message,
			Context:   ctx,
			Fields:    fields,
		}
		if data, err := json.Marshal(entry); err == nil {
			target.Println(string(data))
			return
		}
	}

	line := fmt.Sprintf("[%s] %s %s", level.String(), time.Now().Format("2006-01-02 15:04:05"), message)
	if ctx != nil && ctx.JobID != "" {
		line += fmt.Sprintf(" | job=%s", ctx.JobID)
	}
	for key, value := range fields {
		line += fmt.Sprintf(" | %s=%v", key, value)
	}
	target.Println(line)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(l.debug, DEBUG, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.write(l.info, INFO, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(l.warn, WARN, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.write(l.error, ERROR, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.write(l.fatal, FATAL, fmt.Sprintf(format, args...), nil, nil)
	os.Exit(1)
}

func (l *Logger) DebugWithContext(ctx *LogContext, message string) {
	l.write(l.debug, DEBUG, message, ctx, nil)
}

func (l *Logger) InfoWithContext(ctx *LogContext, message string) {
	l.write(l.info, INFO, message, ctx, nil)
}

func (l *Logger) ErrorWithContext(ctx *LogContext, message string) {
	l.write(l.error, ERROR, message, ctx, nil)
}

func (l *Logger) InfoWithFields(message string, fields map[string]interface{}) {
	l.write(l.info, INFO, message, nil, fields)
}

func (l *Logger) ErrorWithFields(message string, fields map[string]interface{}) {
	l.write(l.error, ERROR, message, nil, fields)
}
