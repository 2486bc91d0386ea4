// ABOUTME: Newline-delimited TCP implementation of Dialer and Session.
// ABOUTME: Writes the identity on connect and rate-limits outgoing lines.

package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxLineLength bounds a single received line.
const maxLineLength = 64 * 1024

// TCPDialerParams configures a TCPDialer.
type TCPDialerParams struct {
	Addr        string        // host:port of the game server
	DialTimeout time.Duration // 0 means no timeout beyond ctx
	SendRate    float64       // outgoing lines per second, 0 = unlimited
	SendBurst   int
	Logger      *slog.Logger
}

// TCPDialer dials the game server over plain TCP.
type TCPDialer struct {
	params TCPDialerParams
}

// NewTCPDialer creates a dialer for the given parameters.
func NewTCPDialer(params TCPDialerParams) *TCPDialer {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	if params.SendBurst <= 0 {
		params.SendBurst = 1
	}
	return &TCPDialer{params: params}
}

// Dial connects and announces identity as the first line.
func (d *TCPDialer) Dial(ctx context.Context, identity string) (Session, error) {
	dialer := net.Dialer{Timeout: d.params.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.params.Addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", d.params.Addr, err)
	}

	limit := rate.Inf
	if d.params.SendRate > 0 {
		limit = rate.Limit(d.params.SendRate)
	}

	closed, markClosed := context.WithCancel(context.Background())
	s := &tcpSession{
		conn:       conn,
		lines:      bufio.NewScanner(conn),
		limiter:    rate.NewLimiter(limit, d.params.SendBurst),
		closed:     closed,
		markClosed: markClosed,
		logger:     d.params.Logger.With("identity", identity, "remote", conn.RemoteAddr().String()),
	}
	s.lines.Buffer(make([]byte, 4096), maxLineLength)

	if err := s.writeLine(identity); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending identity: %w", err)
	}

	s.logger.Debug("session opened")
	return s, nil
}

// tcpSession is a Session over a net.Conn.
type tcpSession struct {
	conn    net.Conn
	lines   *bufio.Scanner
	limiter *rate.Limiter
	logger  *slog.Logger

	writeMu    sync.Mutex
	closeOnce  sync.Once
	closed     context.Context // done once Close has been called
	markClosed context.CancelFunc
}

// NextLine reads the next line. Cancelling ctx closes the session.
func (s *tcpSession) NextLine(ctx context.Context) (string, error) {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	if s.lines.Scan() {
		return strings.TrimRight(s.lines.Text(), "\r"), nil
	}

	if s.isClosed() {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrSessionClosed
	}

	if err := s.lines.Err(); err != nil {
		return "", fmt.Errorf("reading line: %w", err)
	}
	return "", io.EOF
}

// SendChat writes text verbatim.
func (s *tcpSession) SendChat(text string) error {
	return s.writeLine(text)
}

// SendCommand writes text with a leading slash.
func (s *tcpSession) SendCommand(text string) error {
	return s.writeLine("/" + text)
}

// writeLine waits for the rate limiter and writes one line.
func (s *tcpSession) writeLine(line string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}

	if err := s.limiter.Wait(s.closed); err != nil {
		return ErrSessionClosed
	}

	// Embedded newlines would be read as separate lines by the server
	line = strings.NewReplacer("\r", " ", "\n", " ").Replace(line)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := io.WriteString(s.conn, line+"\n"); err != nil {
		if s.isClosed() {
			return ErrSessionClosed
		}
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// Close closes the underlying connection once.
func (s *tcpSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.markClosed()
		err = s.conn.Close()
		s.logger.Debug("session closed")
	})
	return err
}

func (s *tcpSession) isClosed() bool {
	return s.closed.Err() != nil
}

var _ Session = (*tcpSession)(nil)
var _ Dialer = (*TCPDialer)(nil)
