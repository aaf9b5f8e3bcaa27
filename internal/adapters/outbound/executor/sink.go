package executor

import "sync"

// truncationMarker is appended once when a stream exceeds its cap.
const truncationMarker = "\n[... output truncated ...]"

// capSink is a fixed-capacity stream sink. Writes beyond the capacity
// are discarded so a runaway process cannot exhaust memory during the
// capture window; Write always reports success to keep io.Copy going.
type capSink struct {
	mu        sync.Mutex
	buf       []byte
	capacity  int
	truncated bool
}

func newCapSink(capacity int) *capSink {
	return &capSink{buf: make([]byte, 0, capacity), capacity: capacity}
}

func (s *capSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.truncated {
		return len(p), nil
	}
	room := s.capacity - len(s.buf)
	if room >= len(p) {
		s.buf = append(s.buf, p...)
		return len(p), nil
	}
	s.buf = append(s.buf, p[:room]...)
	s.truncated = true
	return len(p), nil
}

func (s *capSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.truncated {
		return string(s.buf) + truncationMarker
	}
	return string(s.buf)
}
