// ABOUTME: Classifies raw server chat lines into typed ServerMessage variants.
// ABOUTME: Priority-ordered matching: auth prompts, teleport requests, direct messages, unknown.

package message

import (
	"regexp"
	"strings"
)

const (
	registerPromptMarker = "/register <password>"
	loginPromptMarker    = "/login <password>"
	loginSuccessMarker   = "Successful login!"
	teleportSuffix       = " has requested to teleport to you"
)

// namePattern is the character class and length bound shared by usernames
// in direct messages and spawn targets.
const namePattern = `[A-Za-z0-9_]{2,16}`

var (
	directMessageRegex = regexp.MustCompile(`^\s*\[(` + namePattern + `)\s*->\s*(` + namePattern + `)\](?s:(.*))$`)
	validNameRegex     = regexp.MustCompile(`^` + namePattern + `$`)
)

// ServerMessage is one classified line received from the server.
// The concrete type is one of RegisterPrompt, LoginPrompt, LoginSuccess,
// TeleportRequest, DirectMessage or Unknown.
type ServerMessage interface {
	isServerMessage()
}

// RegisterPrompt asks the client to register an account.
type RegisterPrompt struct{}

// LoginPrompt asks the client to log in.
type LoginPrompt struct{}

// LoginSuccess confirms the login handshake completed.
type LoginSuccess struct{}

// TeleportRequest is a player asking to teleport to the bot.
type TeleportRequest struct {
	Username string
}

// DirectMessage is a private message between two players.
// To is "me" when the message is addressed to the receiving bot.
type DirectMessage struct {
	From    string
	To      string
	Body    string
	Command Command
}

// Unknown is any line that matched no other rule.
type Unknown struct {
	Line string
}

func (RegisterPrompt) isServerMessage()  {}
func (LoginPrompt) isServerMessage()     {}
func (LoginSuccess) isServerMessage()    {}
func (TeleportRequest) isServerMessage() {}
func (DirectMessage) isServerMessage()   {}
func (Unknown) isServerMessage()         {}

// ParseServerMessage classifies a single line. It never fails; lines that
// match no rule are returned as Unknown.
func ParseServerMessage(line string) ServerMessage {
	if strings.Contains(line, registerPromptMarker) {
		return RegisterPrompt{}
	}
	if strings.Contains(line, loginPromptMarker) {
		return LoginPrompt{}
	}
	if strings.Contains(line, loginSuccessMarker) {
		return LoginSuccess{}
	}
	if msg, ok := parseTeleportRequest(line); ok {
		return msg
	}
	if msg, ok := parseDirectMessage(line); ok {
		return msg
	}
	return Unknown{Line: line}
}

// parseTeleportRequest extracts the requesting username, which is
// everything before the fixed suffix.
func parseTeleportRequest(line string) (TeleportRequest, bool) {
	idx := strings.Index(line, teleportSuffix)
	if idx < 0 {
		return TeleportRequest{}, false
	}
	username := strings.TrimSpace(line[:idx])
	if username == "" {
		return TeleportRequest{}, false
	}
	return TeleportRequest{Username: username}, true
}

func parseDirectMessage(line string) (DirectMessage, bool) {
	m := directMessageRegex.FindStringSubmatch(line)
	if m == nil {
		return DirectMessage{}, false
	}
	body := strings.TrimSpace(m[3])
	return DirectMessage{
		From:    m[1],
		To:      m[2],
		Body:    body,
		Command: ParseCommand(body),
	}, true
}

// ValidName reports whether name is an acceptable player or bot identity:
// 2 to 16 characters from [A-Za-z0-9_].
func ValidName(name string) bool {
	return validNameRegex.MatchString(name)
}
