// ABOUTME: Session and Dialer interfaces for a bot's connection to the game server.
// ABOUTME: Distinguishes broadcast chat lines from slash-command lines.

package transport

import (
	"context"
	"errors"
)

// ErrSessionClosed is returned by a Session after Close has been called.
var ErrSessionClosed = errors.New("session closed")

// Session is one live connection for a single bot identity.
type Session interface {
	// NextLine blocks until a line arrives, the session ends, or ctx is done.
	// It returns io.EOF when the server closed the connection normally.
	NextLine(ctx context.Context) (string, error)

	// SendChat broadcasts text to the shared chat channel.
	SendChat(text string) error

	// SendCommand sends text as a slash command (without the leading slash).
	SendCommand(text string) error

	// Close terminates the session. It is safe to call more than once.
	Close() error
}

// Dialer opens sessions to the game server.
type Dialer interface {
	Dial(ctx context.Context, identity string) (Session, error)
}
