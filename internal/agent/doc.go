// Package agent runs the chat bots and keeps them connected.
//
// # Bot
//
// A Bot drives one connection attempt for one identity. Server lines are
// handled strictly in arrival order:
//
//	bot := agent.NewBot(agent.BotParams{
//	    Identity:   "bob",
//	    Credential: creds.For("bob"),
//	    Session:    sess,
//	    ...
//	})
//	err := bot.Run(ctx)
//
// Until the server confirms the login, every line goes to the auth
// handshake and nothing else. After that, teleport requests are accepted
// or denied against the allow-list, and direct messages addressed to the
// bot are parsed into commands:
//
//   - spawn <name>: master only, registers and starts a slave bot
//   - echo <text>: repeat text in the public chat
//   - tpask <name>: ask to teleport to a player
//   - disconnect: close the session without reconnecting
//   - help [command]: whisper usage text
//
// Commands from players outside the allow-list get a refusal whisper.
//
// # Supervisor
//
// The Supervisor keeps one loop per identity. A loop retries failed
// sessions forever, waiting RetryDelay between attempts (or a capped
// exponential backoff when MaxRetryDelay is larger). A session that ends
// cleanly, either because the server closed the connection or because a
// trusted player asked for a disconnect, ends the loop.
//
// EnsureRunning deduplicates through a shared dedupe.Set: the identity is
// inserted atomically before the loop starts and removed when it exits, so
// an identity is in the set exactly while its loop is alive.
package agent
