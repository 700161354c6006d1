package lsclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"time"

	"github.com/gorilla/websocket"
)

// Dialer opens connections to a language service. The context passed to its
// methods owns the connection: cancelling it stops the connection. Timeout
// only bounds establishing the connection.
type Dialer struct {
	Timeout time.Duration
	Options []Option
}

// Dial connects to a language service listening on network/address.
func (d Dialer) Dial(ctx context.Context, network, address string) (*Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("lsclient: dial %s: %w", address, err)
	}
	return NewFromReadWriteCloser(ctx, conn, d.Options...), nil
}

// DialWebSocket connects to a language service exposed over WebSocket. Each
// JSON-RPC message travels in its own text frame.
func (d Dialer) DialWebSocket(ctx context.Context, url string, header http.Header) (*Conn, error) {
	dialer := *websocket.DefaultDialer
	if d.Timeout > 0 {
		dialer.HandshakeTimeout = d.Timeout
	}
	ws, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("lsclient: dial websocket %s: %w", url, err)
	}
	return New(ctx, NewWebSocketStream(ws), d.Options...), nil
}

// Dial connects to a language service listening on network/address with no
// connect timeout.
func Dial(ctx context.Context, network, address string, options ...Option) (*Conn, error) {
	return Dialer{Options: options}.Dial(ctx, network, address)
}

// DialWebSocket connects over WebSocket with no handshake timeout.
func DialWebSocket(ctx context.Context, url string, header http.Header, options ...Option) (*Conn, error) {
	return Dialer{Options: options}.DialWebSocket(ctx, url, header)
}

// Spawn starts the language service as a child process and talks to it over
// its stdin and stdout. The process is killed when ctx is done.
func Spawn(ctx context.Context, name string, args []string, options ...Option) (*Conn, error) {
	if name == "" {
		return nil, errors.New("lsclient: command is required")
	}
	cmd := exec.CommandContext(ctx, name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lsclient: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lsclient: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lsclient: start %s: %w", name, err)
	}

	pipe := &processPipe{ReadCloser: stdout, WriteCloser: stdin, cmd: cmd}
	return NewFromReadWriteCloser(ctx, pipe, options...), nil
}

// processPipe joins a child's stdout and stdin into one stream.
type processPipe struct {
	io.ReadCloser
	io.WriteCloser
	cmd *exec.Cmd
}

func (p *processPipe) Close() error {
	werr := p.WriteCloser.Close()
	rerr := p.ReadCloser.Close()
	if err := p.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return err
		}
	}
	return errors.Join(werr, rerr)
}
