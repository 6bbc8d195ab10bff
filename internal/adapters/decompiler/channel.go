package decompiler

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/core/domain"
)

// Channel correlates requests written to one engine process with the
// responses read back from it. Requests are pipelined; the reader
// demultiplexes responses by request_seq.
type Channel struct {
	w       io.Writer
	writeMu sync.Mutex

	mu      sync.Mutex
	seq     int64
	pending map[int64]chan result
	closed  error

	timeout   time.Duration
	onTimeout func()
}

type result struct {
	msg *Message
	err error
}

// NewChannel creates a channel writing requests to w. A zero timeout waits
// indefinitely.
func NewChannel(w io.Writer, timeout time.Duration, onTimeout func()) *Channel {
	return &Channel{
		w:         w,
		pending:   make(map[int64]chan result),
		timeout:   timeout,
		onTimeout: onTimeout,
	}
}

// Send writes one request and waits for its response. A response reporting
// failure is returned without error; the caller maps it to a domain error.
func (c *Channel) Send(ctx context.Context, command string, args Arguments) (*Message, error) {
	seq, ch, err := c.register()
	if err != nil {
		return nil, err
	}

	line, err := json.Marshal(Request{
		Type:      TypeRequest,
		Seq:       seq,
		Command:   command,
		Arguments: args,
	})
	if err != nil {
		c.forget(seq)
		return nil, zerr.Wrap(err, "failed to encode request")
	}

	c.writeMu.Lock()
	_, err = c.w.Write(append(line, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		c.forget(seq)
		werr := zerr.With(zerr.Wrap(domain.ErrEngineUnavailable, "failed to write request"), "seq", seq)
		return nil, zerr.With(werr, "cause", err.Error())
	}

	var timer <-chan time.Time
	if c.timeout > 0 {
		t := time.NewTimer(c.timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case res := <-ch:
		return res.msg, res.err
	case <-timer:
		c.forget(seq)
		if c.onTimeout != nil {
			c.onTimeout()
		}
		terr := zerr.With(zerr.Wrap(domain.ErrTimeout, "request timed out"), "seq", seq)
		return nil, zerr.With(terr, "command", command)
	case <-ctx.Done():
		c.forget(seq)
		return nil, ctx.Err()
	}
}

// Pending reports the number of requests awaiting a response.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Channel) register() (int64, chan result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed != nil {
		return 0, nil, c.closed
	}

	c.seq++
	ch := make(chan result, 1)
	c.pending[c.seq] = ch
	return c.seq, ch, nil
}

func (c *Channel) forget(seq int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, seq)
}

// deliver routes a response to its waiter. It reports false when no request
// with that sequence id is pending.
func (c *Channel) deliver(msg *Message) bool {
	c.mu.Lock()
	ch, ok := c.pending[msg.RequestSeq]
	delete(c.pending, msg.RequestSeq)
	c.mu.Unlock()

	if !ok {
		return false
	}
	ch <- result{msg: msg}
	return true
}

// fail completes every pending request with err without closing the channel.
func (c *Channel) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for seq, ch := range c.pending {
		ch <- result{err: zerr.With(err, "seq", seq)}
		delete(c.pending, seq)
	}
}

// close fails every pending request with err and rejects later sends.
func (c *Channel) close(err error) {
	c.mu.Lock()
	if c.closed == nil {
		c.closed = err
	}
	c.mu.Unlock()

	c.fail(err)
}
