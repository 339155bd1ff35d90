package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Once the log file passes maxLogSize it is cut back to its newest keepLogSize bytes.
const (
	maxLogSize  = 6 << 20
	keepLogSize = 5 << 20
)

// logFile is an append-only writer with a size cap, used for CIVIC_LOG_PATH.
type logFile struct {
	mu   sync.Mutex
	file *os.File
	max  int64
	keep int64
}

func openLogFile(path string) (*logFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	lf := &logFile{file: f, max: maxLogSize, keep: keepLogSize}
	if err := lf.trim(); err != nil {
		f.Close()
		return nil, err
	}
	return lf, nil
}

func (l *logFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, l.trim()
}

func (l *logFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// trim keeps only the tail of the file once it grows past max.
func (l *logFile) trim() error {
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= l.max {
		return nil
	}

	tail := make([]byte, l.keep)
	n, err := l.file.ReadAt(tail, size-l.keep)
	if err != nil && err != io.EOF {
		return err
	}
	if err := l.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end after truncation.
	_, err = l.file.Write(tail[:n])
	return err
}
