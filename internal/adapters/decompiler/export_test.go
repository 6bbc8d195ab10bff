package decompiler

import (
	"io"
	"os"

	"go.trai.ch/ilview/internal/core/ports"
)

// Process returns the live engine process so tests can kill it from outside.
func (s *Session) Process() *os.Process {
	s.handle.mu.RLock()
	defer s.handle.mu.RUnlock()
	if s.handle.proc == nil {
		return nil
	}
	return s.handle.proc.cmd.Process
}

// Pending returns the number of in-flight requests against the current generation.
func (s *Session) Pending() int {
	p, err := s.handle.current()
	if err != nil {
		return 0
	}
	return p.channel.Pending()
}

// Deliver exposes response routing.
func (c *Channel) Deliver(msg *Message) bool { return c.deliver(msg) }

// Close exposes channel shutdown.
func (c *Channel) Close(err error) { c.close(err) }

// NewLogWriter exposes the stderr forwarder.
func NewLogWriter(logger ports.Logger, prefix string) io.WriteCloser {
	return &logWriter{logger: logger, prefix: prefix}
}
