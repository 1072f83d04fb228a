package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level maps a -v count to a zerolog level
func Level(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// DefaultLogFile returns the log path under XDG_STATE_HOME
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, "scenekit", "scenekit.log")
}

// Setup configures the global logger based on verbosity. Output goes to
// the console and, when logFile is not empty, to that file as well. The
// returned closer releases the file.
func Setup(verbosity int, logFile string) io.Closer {
	return SetupWriter(verbosity, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, logFile)
}

// SetupWriter is Setup with an explicit console writer
func SetupWriter(verbosity int, console io.Writer, logFile string) io.Closer {
	zerolog.SetGlobalLevel(Level(verbosity))

	writers := []io.Writer{console}
	var (
		file *os.File
		err  error
	)
	if logFile != "" {
		file, err = openLogFile(logFile)
		if err == nil {
			writers = append(writers, file)
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("Failed to create log file, logging to console only")
	}

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
	if file == nil {
		return nopCloser{}
	}
	return file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
