package lsclient

import (
	"io"

	"go.uber.org/zap"
)

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the logger used for inbound traffic and call failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Conn) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCloser registers an extra resource closed after the connection, such
// as a spawned language service process.
func WithCloser(closer io.Closer) Option {
	return func(c *Conn) {
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
}
