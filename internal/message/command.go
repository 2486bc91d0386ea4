// ABOUTME: Parses the body of a direct message into a typed Command.
// ABOUTME: First token selects the command, the trimmed remainder is its parameter string.

package message

import (
	"strings"
	"unicode"
)

// Command names understood by the bots.
const (
	CommandSpawn       = "spawn"
	CommandEcho        = "echo"
	CommandTeleportAsk = "tpask"
	CommandDisconnect  = "disconnect"
	CommandHelp        = "help"
)

// Command is a parsed direct-message body. The concrete type is one of
// Spawn, EchoGlobal, TeleportAsk, Disconnect, Help or Unrecognized.
type Command interface {
	isCommand()
}

// Spawn asks the master bot to provision a new slave bot.
type Spawn struct {
	Name string
}

// EchoGlobal broadcasts Text to the public chat.
type EchoGlobal struct {
	Text string
}

// TeleportAsk makes the bot ask to teleport to Username.
type TeleportAsk struct {
	Username string
}

// Disconnect makes the bot drop its current connection.
type Disconnect struct{}

// Help requests usage text. Topic is empty when no command was named.
type Help struct {
	Topic string
}

// Unrecognized is any body that is not a valid command.
type Unrecognized struct {
	Text string
}

func (Spawn) isCommand()        {}
func (EchoGlobal) isCommand()   {}
func (TeleportAsk) isCommand()  {}
func (Disconnect) isCommand()   {}
func (Help) isCommand()         {}
func (Unrecognized) isCommand() {}

// ParseCommand parses a direct-message body. It never fails; bodies that do
// not form a valid command are returned as Unrecognized with the original text.
func ParseCommand(body string) Command {
	word, params := splitCommand(body)
	if word == "" {
		return Unrecognized{Text: body}
	}

	switch word {
	case CommandSpawn:
		if !ValidName(params) {
			return Unrecognized{Text: body}
		}
		return Spawn{Name: params}
	case CommandEcho:
		return EchoGlobal{Text: params}
	case CommandTeleportAsk:
		return TeleportAsk{Username: params}
	case CommandDisconnect:
		return Disconnect{}
	case CommandHelp:
		return Help{Topic: params}
	default:
		return Unrecognized{Text: body}
	}
}

// splitCommand returns the first whitespace-delimited token and the trimmed rest.
func splitCommand(body string) (word, params string) {
	trimmed := strings.TrimSpace(body)
	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return trimmed, ""
	}
	return trimmed[:idx], strings.TrimSpace(trimmed[idx:])
}
