package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSizeMB  = 5
	logMaxBackups = 3
	logMaxAgeDays = 28
)

var fileWriter *lumberjack.Logger

// SetupLogger configures the global logger based on verbosity level.
// Console output goes to stderr; a rotated copy is kept under the state dir.
// quiet wins over verbosity and only lets errors through.
func SetupLogger(verbosity int, quiet bool) {
	zerolog.SetGlobalLevel(levelFor(verbosity, quiet))

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	if fileWriter != nil {
		_ = fileWriter.Close()
	}

	logFile := getLogFilePath()
	writers := []io.Writer{consoleWriter}
	dirErr := os.MkdirAll(filepath.Dir(logFile), 0755)
	if dirErr == nil {
		fileWriter = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, fileWriter)
	} else {
		fileWriter = nil
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	if dirErr != nil {
		log.Warn().Err(dirErr).Str("path", logFile).Msg("Failed to create log directory, logging to console only")
	}

	if verbosity >= 2 && !quiet {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
}

// Close flushes and releases the log file, if one is open.
func Close() error {
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

func levelFor(verbosity int, quiet bool) zerolog.Level {
	if quiet {
		return zerolog.ErrorLevel
	}
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

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// getLogFilePath returns the path to the log file.
// CONFMAN_STATE_DIR wins, then XDG_STATE_HOME, then ~/.local/state/confman.
func getLogFilePath() string {
	if dir := os.Getenv("CONFMAN_STATE_DIR"); dir != "" {
		return filepath.Join(dir, "confman.log")
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "confman.log"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "confman", "confman.log")
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
