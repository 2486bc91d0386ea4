// ABOUTME: Per-connection login handshake state machine.
// ABOUTME: Answers register/login prompts until the server confirms a successful login.

package auth

import (
	"fmt"
	"sync/atomic"

	"github.com/2389/chatfleet/internal/message"
)

// Handshake tracks whether one connection attempt has completed the
// server's register/login exchange. It starts awaiting a prompt and moves
// to logged in exactly once. A new connection attempt needs a new Handshake.
type Handshake struct {
	credential string
	loggedIn   atomic.Bool
}

// NewHandshake creates a handshake that answers prompts with credential.
func NewHandshake(credential string) *Handshake {
	return &Handshake{credential: credential}
}

// LoggedIn reports whether the server has confirmed the login.
func (h *Handshake) LoggedIn() bool {
	return h.loggedIn.Load()
}

// Handle feeds one server message into the handshake. While awaiting login
// every message is intercepted (intercepted is true) and reply holds the
// command line to send, if any. Once logged in nothing is intercepted and
// prompts no longer produce replies.
func (h *Handshake) Handle(msg message.ServerMessage) (reply string, intercepted bool) {
	if h.loggedIn.Load() {
		return "", false
	}

	switch msg.(type) {
	case message.RegisterPrompt:
		return h.RegisterCommand(), true
	case message.LoginPrompt:
		return h.LoginCommand(), true
	case message.LoginSuccess:
		h.loggedIn.Store(true)
	}
	return "", true
}

// RegisterCommand is the reply to a register prompt.
func (h *Handshake) RegisterCommand() string {
	return fmt.Sprintf("register %s %s", h.credential, h.credential)
}

// LoginCommand is the reply to a login prompt.
func (h *Handshake) LoginCommand() string {
	return "login " + h.credential
}
