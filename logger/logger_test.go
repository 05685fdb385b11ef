package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileAuditAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	audit, err := NewFileAudit(path)
	if err != nil {
		t.Fatalf("Failed to create audit log: %v", err)
	}
	audit.Log("User 'alice' registered")
	audit.Log("Chat 5 deleted")
	audit.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), lines)
	}

	if !strings.HasSuffix(lines[0], "User 'alice' registered") {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "Chat 5 deleted") {
		t.Errorf("Unexpected second line: %q", lines[1])
	}

	// Каждая строка начинается с метки времени
	if len(lines[0]) < 19 {
		t.Fatalf("Line too short for a timestamp: %q", lines[0])
	}
	if _, err := time.Parse("2006-01-02 15:04:05", lines[0][:19]); err != nil {
		t.Errorf("Line does not start with a timestamp: %q", lines[0])
	}
}

func TestFileAuditReopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	first, err := NewFileAudit(path)
	if err != nil {
		t.Fatalf("Failed to create audit log: %v", err)
	}
	first.Log("one")
	first.Close()

	second, err := NewFileAudit(path)
	if err != nil {
		t.Fatalf("Failed to reopen audit log: %v", err)
	}
	second.Log("two")
	second.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if got := len(strings.Split(strings.TrimSpace(string(data)), "\n")); got != 2 {
		t.Errorf("Expected append across reopen, got %d lines", got)
	}
}
