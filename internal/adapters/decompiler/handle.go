package decompiler

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
)

// Handle owns at most one engine process. Start, Stop and Restart are
// serialized by the lifecycle mutex; a crash is observed by the process
// monitor and flips the handle to Crashed immediately.
type Handle struct {
	cfg    domain.EngineConfig
	logger ports.Logger

	lifecycle sync.Mutex

	mu    sync.RWMutex
	proc  *process
	state domain.SessionState
}

// NewHandle creates a stopped handle.
func NewHandle(cfg domain.EngineConfig, logger ports.Logger) *Handle {
	return &Handle{
		cfg:    cfg,
		logger: logger,
		state:  domain.StateStopped,
	}
}

// Start spawns the engine unless it is already running.
func (h *Handle) Start(ctx context.Context) error {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	if h.IsRunning() {
		return nil
	}
	h.stopLocked()
	return h.startLocked(ctx)
}

// Stop terminates the engine. It never fails; problems are logged.
func (h *Handle) Stop() {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	h.stopLocked()
}

// Restart stops any running engine and starts a new one.
func (h *Handle) Restart(ctx context.Context) error {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	h.stopLocked()
	return h.startLocked(ctx)
}

// Ensure starts the engine when it is not running or when the current
// generation stopped answering. Concurrent callers share one restart.
func (h *Handle) Ensure(ctx context.Context) error {
	if h.healthy() {
		return nil
	}

	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	if h.healthy() {
		return nil
	}
	h.stopLocked()
	return h.startLocked(ctx)
}

// IsRunning reports whether a live engine process is attached.
func (h *Handle) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.proc != nil && h.state == domain.StateRunning
}

// State returns the lifecycle state.
func (h *Handle) State() domain.SessionState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Generation identifies the running process. It is empty when none is attached.
func (h *Handle) Generation() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.proc == nil {
		return ""
	}
	return h.proc.generation
}

// PID returns the engine's process id, or 0 when not running.
func (h *Handle) PID() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.proc == nil {
		return 0
	}
	return h.proc.cmd.Process.Pid
}

// current returns the running process or ErrEngineUnavailable.
func (h *Handle) current() (*process, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.proc == nil || h.state != domain.StateRunning {
		return nil, zerr.With(zerr.Wrap(domain.ErrEngineUnavailable, "no engine process"), "state", h.state.String())
	}
	return h.proc, nil
}

func (h *Handle) healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.proc != nil && h.state == domain.StateRunning && !h.proc.wedged.Load()
}

func (h *Handle) startLocked(ctx context.Context) error {
	h.setState(domain.StateStarting)

	p, err := spawn(ctx, h.cfg, h.logger, h.onExit)
	if err != nil {
		h.setState(domain.StateStopped)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if p.exited() {
		// Exited between readiness and attach; the monitor saw no owner.
		h.state = domain.StateCrashed
		return zerr.With(zerr.Wrap(domain.ErrStartupFailure, "engine exited right after startup"), "generation", p.generation)
	}
	h.proc = p
	h.state = domain.StateRunning
	return nil
}

func (h *Handle) stopLocked() {
	h.mu.Lock()
	p := h.proc
	if p == nil {
		if h.state == domain.StateCrashed {
			h.state = domain.StateStopped
		}
		h.mu.Unlock()
		return
	}
	h.proc = nil
	h.state = domain.StateStopping
	h.mu.Unlock()

	// Requests still in flight belong to a superseded generation.
	p.channel.close(zerr.With(zerr.Wrap(domain.ErrEngineUnavailable, "engine is stopping"), "generation", p.generation))
	p.terminate(h.cfg.StopGracePeriod)

	h.setState(domain.StateStopped)
	h.logger.Debug("engine stopped (generation " + p.generation + ")")
}

// onExit runs on the process monitor goroutine.
func (h *Handle) onExit(p *process) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.proc != p {
		return
	}
	h.proc = nil
	if h.state == domain.StateRunning && !p.stopping.Load() {
		h.state = domain.StateCrashed
		msg := fmt.Sprintf("engine exited unexpectedly (generation %s)", p.generation)
		if p.exitErr != nil {
			msg += ": " + p.exitErr.Error()
		}
		h.logger.Warn(msg)
	}
}

func (h *Handle) setState(s domain.SessionState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
}
