// Package message classifies raw chat lines received from the game server.
//
// # Server Messages
//
// ParseServerMessage maps one line to exactly one ServerMessage variant.
// Rules are tried in a fixed priority order and the first match wins:
//
//  1. RegisterPrompt  - line contains "/register <password>"
//  2. LoginPrompt     - line contains "/login <password>"
//  3. LoginSuccess    - line contains "Successful login!"
//  4. TeleportRequest - "<username> has requested to teleport to you"
//  5. DirectMessage   - "[<from> -> <to>] <body>"
//  6. Unknown         - everything else
//
// Parsing is total: every line yields a value, never an error.
//
// # Commands
//
// The body of a DirectMessage is further parsed into a Command. The first
// whitespace-delimited token is the command word and the trimmed remainder
// is its parameter string:
//
//	spawn <name>      Spawn (name must match [A-Za-z0-9_]{2,16})
//	echo <text>       EchoGlobal
//	tpask <username>  TeleportAsk
//	disconnect        Disconnect
//	help [command]    Help
//
// Anything else, including a spawn with an invalid name, becomes
// Unrecognized carrying the original body.
package message
