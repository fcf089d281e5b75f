package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is meant to be replaced or configured by the
// application embedding the engine. Each module/package should create its own sub-logger from it so that log lines
// can be filtered by origin.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger wraps a zerolog.Logger and a list of additional output writers, so that log output can be sent to console
// and any number of arbitrary channels at once.
type Logger struct {
	// level describes the log level both underlying loggers are set to.
	level zerolog.Level

	// multiLogger describes a logger that will be used to output logs to any arbitrary writer(s) in structured format.
	multiLogger zerolog.Logger

	// consoleLogger describes a logger that will be used to output human-readable output to console.
	consoleLogger zerolog.Logger

	// writers describes the io.Writer objects where structured log output will go.
	writers []io.Writer
}

// NewLogger will create a new Logger object with a specific log level. The Logger can output to console, if enabled,
// and output logs to any number of arbitrary io.Writer channels.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// Instantiate both loggers as disabled so that we never hand out nil loggers.
	baseMultiLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	baseConsoleLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	if len(writers) > 0 {
		baseMultiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}

	if consoleEnabled {
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}
		baseConsoleLogger = zerolog.New(consoleWriter).Level(level)
	}

	return &Logger{
		level:         level,
		multiLogger:   baseMultiLogger,
		consoleLogger: baseConsoleLogger,
		writers:       writers,
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have its own logger so that parsing of logs is "grep-able" based on some key.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subMultiLogger := l.multiLogger.With().Str(key, value).Logger()
	subConsoleLogger := l.consoleLogger.With().Str(key, value).Logger()
	return &Logger{
		level:         l.level,
		multiLogger:   subMultiLogger,
		consoleLogger: subConsoleLogger,
		writers:       l.writers,
	}
}

// AddWriter will add a writer to the list of channels where structured log output will be sent.
func (l *Logger) AddWriter(writer io.Writer) {
	for _, w := range l.writers {
		if writer == w {
			return
		}
	}
	l.writers = append(l.writers, writer)
	l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
}

// Level will get the log level of the Logger.
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace logs a trace-level message with optional key-value fields.
func (l *Logger) Trace(msg string, fields map[string]any) {
	l.multiLogger.Trace().Fields(fields).Msg(msg)
	l.consoleLogger.Trace().Fields(fields).Msg(msg)
}

// Debug logs a debug-level message with optional key-value fields.
func (l *Logger) Debug(msg string, fields map[string]any) {
	l.multiLogger.Debug().Fields(fields).Msg(msg)
	l.consoleLogger.Debug().Fields(fields).Msg(msg)
}

// Info logs an info-level message with optional key-value fields.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.multiLogger.Info().Fields(fields).Msg(msg)
	l.consoleLogger.Info().Fields(fields).Msg(msg)
}

// Warn logs a warning-level message with optional key-value fields.
func (l *Logger) Warn(msg string, fields map[string]any) {
	l.multiLogger.Warn().Fields(fields).Msg(msg)
	l.consoleLogger.Warn().Fields(fields).Msg(msg)
}

// Error logs an error-level message along with the error itself.
func (l *Logger) Error(msg string, err error) {
	l.multiLogger.Error().Err(err).Msg(msg)
	l.consoleLogger.Error().Err(err).Msg(msg)
}
