package cli

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogRotation holds the rotation settings of --log-file.
type LogRotation struct {
	MaxSize    int  // Maximum size in megabytes
	MaxBackups int  // Maximum number of old log files to retain
	MaxAge     int  // Maximum number of days to retain old log files
	Compress   bool // Compress old log files
}

// DefaultLogRotation returns the rotation used for --log-file.
func DefaultLogRotation() LogRotation {
	return LogRotation{
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}

// newLogger builds the structured logger of one command run. Logs go to
// stderr and, when logFile is set, also to a size-rotated file. The returned
// closer releases the file.
func newLogger(stderr io.Writer, verbose bool, logFile string) (*slog.Logger, io.Closer) {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	w := stderr
	var closer io.Closer = nopCloser{}
	if logFile != "" {
		rot := DefaultLogRotation()
		lj := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    rot.MaxSize,
			MaxBackups: rot.MaxBackups,
			MaxAge:     rot.MaxAge,
			Compress:   rot.Compress,
		}
		w = io.MultiWriter(stderr, lj)
		closer = lj
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
