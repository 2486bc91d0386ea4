// Package auth handles how bots log in to the game server.
//
// # Credentials
//
// The master bot logs in with a configured credential. Every slave derives
// its credential from the shared secret and its own identity:
//
//	hex(sha256(secret + identity + secret))[:20]
//
// Nothing is persisted; a restarted fleet re-derives the same values.
//
// # Handshake
//
// Handshake is the per-connection login state machine. It starts awaiting a
// prompt, answers each register or login prompt with exactly one command,
// and moves to logged-in on the server's success line. Until then it
// intercepts every message so no command is handled before login.
//
// A rejected credential leaves the handshake waiting for another prompt.
// There is no timeout.
package auth
