// ABOUTME: In-memory transport.Session used by agent tests.
// ABOUTME: Feeds scripted lines and records outgoing chat and command lines.

package agent

import (
	"context"
	"io"
	"sync"

	"github.com/2389/chatfleet/internal/transport"
)

// mockSession implements transport.Session for testing.
type mockSession struct {
	lines   chan string
	closed  chan struct{}
	once    sync.Once
	sendErr error

	mu       sync.Mutex
	chats    []string
	commands []string
}

func newMockSession(lines ...string) *mockSession {
	s := &mockSession{
		lines:  make(chan string, len(lines)+16),
		closed: make(chan struct{}),
	}
	for _, l := range lines {
		s.lines <- l
	}
	return s
}

// push queues more server lines.
func (s *mockSession) push(lines ...string) {
	for _, l := range lines {
		s.lines <- l
	}
}

// end makes NextLine report a clean server close once queued lines drain.
func (s *mockSession) end() {
	close(s.lines)
}

func (s *mockSession) NextLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-s.closed:
		return "", transport.ErrSessionClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *mockSession) SendChat(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.chats = append(s.chats, text)
	return nil
}

func (s *mockSession) SendCommand(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.commands = append(s.commands, text)
	return nil
}

func (s *mockSession) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *mockSession) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *mockSession) getCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

func (s *mockSession) getChats() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.chats))
	copy(out, s.chats)
	return out
}

var _ transport.Session = (*mockSession)(nil)
