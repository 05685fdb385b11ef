package protocol

import (
	"bytes"
	"encoding/json"
	"testing"
)

func collectFrames(t *testing.T, s *Scanner) ([][]byte, []error) {
	t.Helper()
	var frames [][]byte
	var errs []error
	for {
		frame, err := s.Next()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if frame == nil {
			return frames, errs
		}
		frames = append(frames, frame)
	}
}

func TestScannerSingleFrame(t *testing.T) {
	s := NewScanner()
	s.Append([]byte(`{"type":"register","login":"alice"}`))

	frames, errs := collectFrames(t, s)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if !json.Valid(frames[0]) {
		t.Errorf("Frame is not valid JSON: %q", frames[0])
	}
}

func TestScannerPartialFrame(t *testing.T) {
	// Один логический документ, пришедший двумя чтениями
	s := NewScanner()
	s.Append([]byte(`{"type":"regi`))

	frame, err := s.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if frame != nil {
		t.Fatalf("Expected no frame yet, got %q", frame)
	}

	s.Append([]byte(`ster","login":"alice"}`))
	frame, err = s.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if want := `{"type":"register","login":"alice"}`; string(frame) != want {
		t.Errorf("Expected %q, got %q", want, frame)
	}
}

func TestScannerMultipleFrames(t *testing.T) {
	// Несколько документов в одном чтении
	s := NewScanner()
	s.Append([]byte(`{"a":1}{"b":2}` + "\n" + `{"c":3}`))

	frames, errs := collectFrames(t, s)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(frames))
	}
	if string(frames[1]) != `{"b":2}` {
		t.Errorf("Expected second frame {\"b\":2}, got %q", frames[1])
	}
}

func TestScannerBracesInsideStrings(t *testing.T) {
	s := NewScanner()
	payload := `{"text":"a } in \" a { string","n":{"x":"}"}}`
	s.Append([]byte(payload))

	frame, err := s.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(frame) != payload {
		t.Errorf("Expected %q, got %q", payload, frame)
	}
	if !json.Valid(frame) {
		t.Errorf("Frame is not valid JSON")
	}
}

func TestScannerGarbageBetweenFrames(t *testing.T) {
	s := NewScanner()
	s.Append([]byte(`garbage{"a":1}`))

	_, err := s.Next()
	if err != ErrInvalidFrame {
		t.Fatalf("Expected ErrInvalidFrame, got %v", err)
	}

	frame, err := s.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(frame) != `{"a":1}` {
		t.Errorf("Expected frame after garbage, got %q", frame)
	}
}

func TestScannerOversizedFrame(t *testing.T) {
	s := NewScanner()
	s.Append([]byte(`{"text":"`))
	s.Append(bytes.Repeat([]byte("x"), MaxFrameSize+1))

	_, err := s.Next()
	if err != ErrFrameTooLarge {
		t.Fatalf("Expected ErrFrameTooLarge, got %v", err)
	}

	// Сканер восстанавливается после сброса буфера
	s.Append([]byte(`{"a":1}`))
	frame, err := s.Next()
	if err != nil {
		t.Fatalf("Unexpected error after reset: %v", err)
	}
	if string(frame) != `{"a":1}` {
		t.Errorf("Expected recovery frame, got %q", frame)
	}
}

func TestChatIDAcceptsNumberAndString(t *testing.T) {
	var req DeleteChatRequest
	if err := json.Unmarshal([]byte(`{"chat_id":5}`), &req); err != nil {
		t.Fatalf("Numeric chat_id: %v", err)
	}
	if req.ChatID != 5 {
		t.Errorf("Expected 5, got %d", req.ChatID)
	}

	if err := json.Unmarshal([]byte(`{"chat_id":"7"}`), &req); err != nil {
		t.Fatalf("String chat_id: %v", err)
	}
	if req.ChatID != 7 {
		t.Errorf("Expected 7, got %d", req.ChatID)
	}
}
