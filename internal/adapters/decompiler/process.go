package decompiler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
)

// maxMessageSize bounds one line of engine output. Decompiled text for a
// large type easily exceeds bufio's default.
const maxMessageSize = 64 << 20

// process is one spawned engine and everything tied to its lifetime.
type process struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	channel    *Channel
	generation string
	logger     ports.Logger

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	exitErr   error

	wedged   atomic.Bool
	stopping atomic.Bool
}

// spawn starts the engine and blocks until it reports ready. onExit runs once
// the process has exited and every pending request has failed.
func spawn(ctx context.Context, cfg domain.EngineConfig, logger ports.Logger, onExit func(*process)) (*process, error) {
	//nolint:gosec // G204: the engine path comes from the user's own configuration
	cmd := exec.Command(cfg.Path, cfg.Args...)
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.WaitDelay = cfg.StopGracePeriod

	p := &process{
		cmd:        cmd,
		generation: uuid.NewString(),
		logger:     logger,
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
	}

	stderr := &logWriter{logger: logger, prefix: "engine: "}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, startupError(err, cfg.Path)
	}
	p.stdin = stdin

	// stdout is a plain pipe so that Wait does not close it under the reader.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, startupError(err, cfg.Path)
	}
	cmd.Stdout = stdoutW

	p.channel = NewChannel(stdin, cfg.RequestTimeout, p.markWedged)

	if err := cmd.Start(); err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, startupError(err, cfg.Path)
	}
	_ = stdoutW.Close()

	go p.readLoop(stdoutR)
	go func() {
		p.exitErr = cmd.Wait()
		_ = stderr.Close()
		p.channel.close(zerr.With(zerr.Wrap(domain.ErrEngineUnavailable, "engine exited"), "generation", p.generation))
		close(p.done)
		if onExit != nil {
			onExit(p)
		}
	}()

	if err := p.waitReady(ctx, cfg.StartupTimeout); err != nil {
		p.kill()
		return nil, zerr.With(err, "engine", cfg.Path)
	}

	logger.Debug(fmt.Sprintf("engine started (pid %d, generation %s)", cmd.Process.Pid, p.generation))
	return p, nil
}

func startupError(cause error, path string) error {
	err := zerr.With(zerr.Wrap(domain.ErrStartupFailure, "failed to spawn engine"), "engine", path)
	return zerr.With(err, "cause", cause.Error())
}

func (p *process) waitReady(ctx context.Context, timeout time.Duration) error {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-p.ready:
		return nil
	case <-p.done:
		err := zerr.Wrap(domain.ErrStartupFailure, "engine exited before it was ready")
		if p.exitErr != nil {
			err = zerr.With(err, "cause", p.exitErr.Error())
		}
		return err
	case <-timer:
		return zerr.With(zerr.Wrap(domain.ErrStartupFailure, "engine did not report ready"), "timeout", timeout)
	case <-ctx.Done():
		return zerr.With(zerr.Wrap(domain.ErrStartupFailure, "startup was cancelled"), "cause", ctx.Err().Error())
	}
}

// readLoop parses engine stdout until EOF.
func (p *process) readLoop(r io.ReadCloser) {
	defer func() { _ = r.Close() }()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		p.handleLine(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		// The stream is no longer framed; nothing after this can be attributed.
		p.markWedged()
		p.channel.fail(zerr.With(zerr.Wrap(domain.ErrMalformedResponse, "engine output unreadable"), "cause", err.Error()))
	}
}

func (p *process) handleLine(line []byte) {
	if len(line) == 0 {
		return
	}

	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		// A line that is not a message cannot be matched to its request, so
		// every waiter fails and the generation is no longer trusted.
		p.markWedged()
		p.channel.fail(zerr.With(zerr.Wrap(domain.ErrMalformedResponse, "engine wrote an unparsable line"), "cause", err.Error()))
		return
	}

	switch msg.Type {
	case TypeEvent:
		p.handleEvent(&msg)
	case TypeResponse:
		if !p.channel.deliver(&msg) {
			p.logger.Debug(fmt.Sprintf("dropping response for unknown request %d", msg.RequestSeq))
		}
	default:
		p.logger.Debug(fmt.Sprintf("ignoring engine message of type %q", msg.Type))
	}
}

func (p *process) handleEvent(msg *Message) {
	switch msg.Event {
	case EventReady:
		p.readyOnce.Do(func() { close(p.ready) })
	case EventLog:
		var body LogBody
		if err := json.Unmarshal(msg.Body, &body); err == nil && body.Message != "" {
			p.logger.Debug("engine: " + body.Message)
		}
	}
}

func (p *process) markWedged() {
	if p.wedged.CompareAndSwap(false, true) {
		p.logger.Warn(fmt.Sprintf("engine generation %s is unresponsive and will be restarted", p.generation))
	}
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// terminate asks the engine to exit by closing its stdin, then kills it after
// the grace period.
func (p *process) terminate(grace time.Duration) {
	p.stopping.Store(true)
	if err := p.stdin.Close(); err != nil {
		p.logger.Debug("closing engine stdin: " + err.Error())
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return
	case <-timer.C:
	}

	p.logger.Warn(fmt.Sprintf("engine did not exit within %s, killing it", grace))
	p.kill()
}

func (p *process) kill() {
	p.stopping.Store(true)
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Error(zerr.Wrap(err, "failed to kill engine"))
	}
	<-p.done
}
