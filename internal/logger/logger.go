package logger

import (
	"os"
	"syscall"
	"time"

	"github.com/mutker/coolantd/internal/errors"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Init initializes the logger based on the given configuration
func Init(debug, verbose, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(WarnLevel) // Default log level

	if debug {
		SetLogLevel(DebugLevel)
	} else if verbose {
		SetLogLevel(InfoLevel)
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running as a service
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

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

func withCode(ev *zerolog.Event, err errors.Error) *LogEvent {
	ev = ev.Str("error_code", string(err.Code())).Str("error_message", err.Error())
	if data := err.GetData(); data != nil {
		ev = ev.Interface("error_data", data)
	}
	return &LogEvent{ev}
}

// ErrorWithCode logs an error message carrying a domain error code.
func ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(log.Error(), err)
}

// FatalWithCode logs a fatal message carrying a domain error code and exits the program.
func FatalWithCode(err errors.Error) *LogEvent {
	return withCode(log.Fatal(), err)
}

// ErrorWithContext logs an error message annotated with the component and
// operation in which it occurred.
func ErrorWithContext(err errors.Error, component, operation string) *LogEvent {
	ev := log.Error().
		Str("error_code", string(err.Code())).
		Str("component", component).
		Str("operation", operation)
	return &LogEvent{ev}
}

// standardLogger implements the Logger interface over the package-level
// global zerolog instance, for callers that want an injectable dependency
// instead of the package functions directly.
type standardLogger struct{}

// New returns a Logger backed by the package-level global logger.
func New() Logger {
	return standardLogger{}
}

func (standardLogger) Debug() *LogEvent {
	return Debug()
}

func (standardLogger) Info() *LogEvent {
	return Info()
}

func (standardLogger) Warn() *LogEvent {
	return Warn()
}

func (standardLogger) Error() *LogEvent {
	return Error()
}

func (standardLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return ErrorWithCode(err)
}
func (standardLogger) FatalWithCode(err errors.Error) *LogEvent {
	return FatalWithCode(err)
}
func (standardLogger) ErrorWithContext(err errors.Error, component, operation string) *LogEvent {
	return ErrorWithContext(err, component, operation)
}
