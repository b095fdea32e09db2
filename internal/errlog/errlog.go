// Package errlog keeps the human-readable error log (erros.log) shared by
// every analysis run.
package errlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/logger"
)

// FileName is the name of the log file inside the configured log directory.
const FileName = "erros.log"

// TimestampLayout formats entry timestamps as YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

// Appender records one failure message.
type Appender interface {
	Append(message string, at time.Time) error
}

// FormatLine renders a single log line, newline included.
func FormatLine(message string, at time.Time) string {
	return at.Format(TimestampLayout) + " - " + message + "\n"
}

// FileLog appends entries to a file. Each entry is written with a single
// write call while holding the lock, so concurrent runs never interleave.
type FileLog struct {
	mu   sync.Mutex
	f    *os.File
	path string
	log  zerolog.Logger
}

// Open creates dir if needed and opens dir/erros.log for appending.
func Open(dir string, log zerolog.Logger) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}

	return &FileLog{
		f:    f,
		path: path,
		log:  logger.Component(log, "errlog"),
	}, nil
}

// Path returns the location of the log file.
func (l *FileLog) Path() string { return l.path }

// Append writes one entry and mirrors it to the structured logger.
func (l *FileLog) Append(message string, at time.Time) error {
	line := FormatLine(message, at)

	l.mu.Lock()
	_, err := l.f.WriteString(line)
	l.mu.Unlock()

	l.log.Warn().Time("at", at).Str("message", message).Msg("Analysis failure recorded")
	if err != nil {
		return fmt.Errorf("write error log: %w", err)
	}
	return nil
}

// Close releases the underlying file.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
