package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileLogger is a Logger whose output goes to a timestamped file. The terminal UI
// owns stdout, so its diagnostics are written here instead.
type FileLogger struct {
	*Logger
	file *os.File
}

// NewFileLogger creates logDir if needed and opens userstable_<timestamp>.log in it
func NewFileLogger(logDir, level, format, service, version string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	name := filepath.Join(logDir, fmt.Sprintf("userstable_%s.log", timestamp))

	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileLogger{
		Logger: New(file, level, format, service, version),
		file:   file,
	}, nil
}

// Path returns the log file location
func (l *FileLogger) Path() string {
	return l.file.Name()
}

// Close closes the log file
func (l *FileLogger) Close() error {
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

var _ io.Closer = (*FileLogger)(nil)

// CleanupOldLogs removes regular files in logDir last modified more than days ago
func CleanupOldLogs(logDir string, days int) (int, error) {
	files, err := os.ReadDir(logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	removed := 0
	cutoffTime := time.Now().AddDate(0, 0, -days)
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		fileInfo, err := file.Info()
		if err != nil {
			continue // Skip files we can't get info for
		}

		if fileInfo.ModTime().Before(cutoffTime) {
			if err := os.Remove(filepath.Join(logDir, file.Name())); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}
