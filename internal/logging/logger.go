package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger appends timestamped lines to a file under .storefront/logs and
// optionally mirrors them to a second writer (stderr for the fixture binary).
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	mirror io.Writer
	clock  func() time.Time
}

// Open creates (or reuses) logsDir/name.
func Open(logsDir, name string) (*Logger, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logsDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{file: f, clock: time.Now}, nil
}

// Mirror copies every line to w as well.
func (l *Logger) Mirror(w io.Writer) *Logger {
	if l != nil {
		l.mirror = w
	}
	return l
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := fmt.Sprintf("[%s] %s\n", l.clock().Format(time.RFC3339), line)
	_, _ = io.WriteString(l.file, entry)
	if l.mirror != nil {
		_, _ = io.WriteString(l.mirror, entry)
	}
}
