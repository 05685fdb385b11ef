package protocol

import (
	"bytes"
	"errors"
)

// MaxFrameSize bounds a single JSON document on the wire. A buffer that grows
// past this without balancing is dropped.
const MaxFrameSize = 1 << 20

var (
	// ErrInvalidFrame reports bytes outside a top-level JSON object.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrFrameTooLarge reports a document exceeding MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")
)

// Scanner extracts complete top-level JSON objects from a byte stream.
// A single socket read may carry a partial document or several documents at
// once, so incoming bytes are buffered and a frame is released only when its
// braces balance outside of string literals.
type Scanner struct {
	buf      []byte
	pos      int
	depth    int
	inString bool
	escaped  bool
}

func NewScanner() *Scanner {
	return &Scanner{}
}

// Append adds bytes received from the transport.
func (s *Scanner) Append(p []byte) {
	s.buf = append(s.buf, p...)
}

// Next returns the next complete JSON object, or nil when more bytes are
// needed. Garbage between objects and oversized documents are consumed and
// reported as an error; scanning continues with the following bytes.
func (s *Scanner) Next() ([]byte, error) {
	// Между кадрами пропускаем пробельные символы
	if s.pos == 0 {
		i := 0
		for i < len(s.buf) && isSpace(s.buf[i]) {
			i++
		}
		s.buf = s.buf[i:]

		if len(s.buf) == 0 {
			return nil, nil
		}

		if s.buf[0] != '{' {
			// Мусор до начала объекта — отбрасываем до следующей '{'
			if j := bytes.IndexByte(s.buf, '{'); j >= 0 {
				s.buf = s.buf[j:]
			} else {
				s.buf = nil
			}
			return nil, ErrInvalidFrame
		}
	}

	for ; s.pos < len(s.buf); s.pos++ {
		c := s.buf[s.pos]

		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			continue
		}

		switch c {
		case '"':
			s.inString = true
		case '{':
			s.depth++
		case '}':
			s.depth--
			if s.depth == 0 {
				frame := make([]byte, s.pos+1)
				copy(frame, s.buf[:s.pos+1])
				s.buf = s.buf[s.pos+1:]
				s.reset()
				return frame, nil
			}
		}
	}

	if len(s.buf) > MaxFrameSize {
		s.buf = nil
		s.reset()
		return nil, ErrFrameTooLarge
	}

	return nil, nil
}

func (s *Scanner) reset() {
	s.pos = 0
	s.depth = 0
	s.inString = false
	s.escaped = false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
