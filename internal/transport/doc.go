// Package transport carries chat lines between a bot and the game server.
//
// A Session is an ordered, bidirectional stream of text lines for one bot
// identity. Dialer opens sessions; the TCP implementation speaks a
// newline-delimited protocol:
//
//   - on connect the client writes its identity as the first line
//   - chat lines are written verbatim and broadcast by the server
//   - command lines are written with a leading "/"
//
// NextLine returns io.EOF when the server closes the connection normally.
// Close is idempotent and unblocks a pending NextLine, which then returns
// ErrSessionClosed.
package transport
