package logger

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Audit is the sink for human-readable audit lines such as
// "User 'alice' registered" or "Chat 5 deleted". It is constructed once at
// process start and injected into every component that records audit events.
type Audit interface {
	Log(message string)
}

// FileAudit appends timestamped lines to a single log file.
type FileAudit struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileAudit(path string) (*FileAudit, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &FileAudit{file: file}, nil
}

// Log writes "2006-01-02 15:04:05 message" followed by a newline.
// Write errors are swallowed: a broken audit sink must not fail requests.
func (a *FileAudit) Log(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(a.file, "%s %s\n", timestamp, message)
}

func (a *FileAudit) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}

// Nop discards every audit line. Used in tests.
type Nop struct{}

func (Nop) Log(string) {}
