// ABOUTME: One bot connection: login handshake followed by remote-command dispatch.
// ABOUTME: Reads server lines in order, gates commands on login and the allow-list, replies via whisper.

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/2389/chatfleet/internal/auth"
	"github.com/2389/chatfleet/internal/message"
	"github.com/2389/chatfleet/internal/transport"
)

// ErrDisconnected is returned by HandleLine after a trusted player asked the bot to disconnect.
var ErrDisconnected = errors.New("disconnect requested")

// SelfAlias is how the server names the receiving player in direct messages.
const SelfAlias = "me"

// Fixed replies sent to players.
const (
	ReplyNotAllowed     = "You are not allowed to send commands"
	ReplyTeleportDenied = "ain't no way lil bro"
	ReplyUnrecognized   = "Unrecognized command. See `/whisper bot help` for a list of commands"
	ReplySpawned        = "Spawned slave bot: %s"
)

var helpTexts = map[string]string{
	"":                         "Commands: spawn, echo, tpask, disconnect, help",
	message.CommandSpawn:       "Usage: /spawn <username> - Spawn/connect a new slave bot with the given username",
	message.CommandEcho:        "Usage: /echo <message> - Echo a message to the server in the global chat",
	message.CommandTeleportAsk: "Usage: /tpask <username> - The bot will /tpask the player with the given username",
	message.CommandDisconnect:  "Usage: /disconnect - Disconnect the bot from the server",
	message.CommandHelp:        "Usage: /help [command] - Show help for the given command",
}

// HelpText returns the usage text for topic. An empty topic lists all commands.
func HelpText(topic string) string {
	if text, ok := helpTexts[topic]; ok {
		return text
	}
	return "Unrecognized command"
}

// Spawner provisions slave bots on behalf of the master.
type Spawner interface {
	SpawnSlave(ctx context.Context, identity string) (StartResult, error)
}

// BotParams holds the parameters for creating a new Bot.
type BotParams struct {
	Identity       string
	Credential     string
	MasterIdentity string
	AllowList      []string
	Session        transport.Session
	Spawner        Spawner
	Logger         *slog.Logger
}

// Bot drives a single connection attempt for one identity. It is not safe
// for concurrent use; lines must be handled in arrival order.
type Bot struct {
	identity  string
	isMaster  bool
	allowed   map[string]struct{}
	session   transport.Session
	spawner   Spawner
	handshake *auth.Handshake
	logger    *slog.Logger
}

// NewBot creates a Bot for one session. The handshake starts awaiting a prompt.
func NewBot(p BotParams) *Bot {
	allowed := make(map[string]struct{}, len(p.AllowList))
	for _, name := range p.AllowList {
		allowed[name] = struct{}{}
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		identity:  p.Identity,
		isMaster:  p.Identity == p.MasterIdentity,
		allowed:   allowed,
		session:   p.Session,
		spawner:   p.Spawner,
		handshake: auth.NewHandshake(p.Credential),
		logger:    logger,
	}
}

// LoggedIn reports whether the server has confirmed this bot's login.
func (b *Bot) LoggedIn() bool {
	return b.handshake.LoggedIn()
}

// Run processes server lines until the session ends. It returns nil when the
// server closed the connection normally or a disconnect was requested, and
// an error for any transport failure. The session is always closed on return.
func (b *Bot) Run(ctx context.Context) error {
	defer b.session.Close()

	for {
		line, err := b.session.NextLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				b.logger.Info("server closed connection")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading from server: %w", err)
		}

		if err := b.HandleLine(ctx, line); err != nil {
			if errors.Is(err, ErrDisconnected) {
				return nil
			}
			return err
		}
	}
}

// HandleLine classifies and handles one server line. Until login completes
// only the handshake sees messages.
func (b *Bot) HandleLine(ctx context.Context, line string) error {
	b.logger.Debug("received line", "line", line)

	msg := message.ParseServerMessage(line)

	if reply, intercepted := b.handshake.Handle(msg); intercepted {
		if reply != "" {
			// reply carries the credential, so only the prompt kind is logged
			b.logger.Debug("answering auth prompt", "prompt", fmt.Sprintf("%T", msg))
			return b.sendCommand(reply)
		}
		if _, ok := msg.(message.LoginSuccess); ok {
			b.logger.Info("logged in")
		}
		return nil
	}

	return b.dispatch(ctx, msg)
}

func (b *Bot) dispatch(ctx context.Context, msg message.ServerMessage) error {
	switch m := msg.(type) {
	case message.TeleportRequest:
		return b.handleTeleportRequest(m.Username)
	case message.DirectMessage:
		return b.handleDirectMessage(ctx, m)
	case message.Unknown:
		b.logger.Debug("unhandled message", "line", m.Line)
	}
	return nil
}

func (b *Bot) handleTeleportRequest(username string) error {
	b.logger.Info("teleport request", "from", username)

	if b.isAllowed(username) {
		b.logger.Info("accepted teleport request", "from", username)
		return b.sendCommand("tpaccept " + username)
	}

	b.logger.Warn("denied teleport request", "from", username)
	if err := b.sendCommand("tpdeny " + username); err != nil {
		return err
	}
	return b.whisper(username, ReplyTeleportDenied)
}

func (b *Bot) handleDirectMessage(ctx context.Context, m message.DirectMessage) error {
	if m.From == SelfAlias || m.From == b.identity {
		return nil
	}
	if m.To != SelfAlias {
		b.logger.Debug("direct message destined to someone else", "from", m.From, "to", m.To)
		return nil
	}

	b.logger.Info("command received", "from", m.From, "body", m.Body)

	if !b.isAllowed(m.From) {
		b.logger.Warn("refused command from untrusted player", "from", m.From)
		return b.whisper(m.From, ReplyNotAllowed)
	}

	switch cmd := m.Command.(type) {
	case message.Spawn:
		if !b.isMaster {
			b.logger.Debug("ignoring spawn on slave bot", "name", cmd.Name)
			return nil
		}
		return b.handleSpawn(ctx, m.From, cmd.Name)

	case message.EchoGlobal:
		if err := b.session.SendChat(cmd.Text); err != nil {
			return fmt.Errorf("sending chat: %w", err)
		}
		return nil

	case message.TeleportAsk:
		return b.sendCommand("tpask " + cmd.Username)

	case message.Disconnect:
		b.logger.Info("disconnect requested", "from", m.From)
		if err := b.session.Close(); err != nil {
			b.logger.Debug("closing session", "error", err)
		}
		return ErrDisconnected

	case message.Help:
		return b.whisper(m.From, HelpText(cmd.Topic))

	case message.Unrecognized:
		b.logger.Info("unrecognized command", "from", m.From, "content", cmd.Text)
		return b.whisper(m.From, ReplyUnrecognized)
	}
	return nil
}

// handleSpawn registers and starts a slave. Spawner failures are logged and
// leave the session running; the requester simply gets no confirmation.
func (b *Bot) handleSpawn(ctx context.Context, from, name string) error {
	if b.spawner == nil {
		b.logger.Error("spawn requested but no spawner configured", "name", name)
		return nil
	}

	result, err := b.spawner.SpawnSlave(ctx, name)
	if err != nil {
		b.logger.Error("failed to spawn slave bot", "name", name, "requested_by", from, "error", err)
		return nil
	}

	b.logger.Info("spawn handled", "name", name, "requested_by", from, "result", result.String())
	return b.whisper(from, fmt.Sprintf(ReplySpawned, name))
}

func (b *Bot) isAllowed(name string) bool {
	_, ok := b.allowed[name]
	return ok
}

func (b *Bot) whisper(to, text string) error {
	return b.sendCommand(fmt.Sprintf("whisper %s %s", to, text))
}

func (b *Bot) sendCommand(line string) error {
	if err := b.session.SendCommand(line); err != nil {
		return fmt.Errorf("sending command: %w", err)
	}
	return nil
}
