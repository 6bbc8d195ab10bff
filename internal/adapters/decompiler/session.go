// Package decompiler supervises the external decompiler engine and exposes
// its commands as ports.Decompiler.
package decompiler

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
)

// TracerName is the instrumentation scope of engine request spans.
const TracerName = "go.trai.ch/ilview/decompiler"

// Session implements ports.Decompiler on top of a Handle.
type Session struct {
	handle *Handle
	logger ports.Logger
	tracer trace.Tracer
}

var _ ports.Decompiler = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithTracerProvider records one span per engine request on tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Session) {
		s.tracer = tp.Tracer(TracerName)
	}
}

// NewSession creates a session whose engine is not started yet.
func NewSession(cfg domain.EngineConfig, logger ports.Logger, opts ...Option) *Session {
	s := &Session{
		handle: NewHandle(cfg, logger),
		logger: logger,
		tracer: otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureRunning starts or restarts the engine when needed.
func (s *Session) EnsureRunning(ctx context.Context) error {
	return s.handle.Ensure(ctx)
}

// IsRunning reports engine liveness.
func (s *Session) IsRunning() bool {
	return s.handle.IsRunning()
}

// Restart replaces the engine process.
func (s *Session) Restart(ctx context.Context) error {
	return s.handle.Restart(ctx)
}

// Stop terminates the engine.
func (s *Session) Stop() {
	s.handle.Stop()
}

// State returns the lifecycle state.
func (s *Session) State() domain.SessionState {
	return s.handle.State()
}

// Generation identifies the current engine process.
func (s *Session) Generation() string {
	return s.handle.Generation()
}

// PID returns the engine's process id, or 0.
func (s *Session) PID() int {
	return s.handle.PID()
}

// LoadAssembly ensures the engine runs and asks it to load path.
func (s *Session) LoadAssembly(ctx context.Context, path string) (domain.AssemblyDescriptor, error) {
	if err := s.EnsureRunning(ctx); err != nil {
		return domain.AssemblyDescriptor{}, err
	}

	msg, err := s.send(ctx, CommandLoad, Arguments{AssemblyPath: path})
	if err != nil {
		return domain.AssemblyDescriptor{}, err
	}
	if !msg.Success {
		return domain.AssemblyDescriptor{}, zerr.With(engineFailure(domain.ErrLoadFailure, msg), "assembly", path)
	}

	var body LoadBody
	if err := decodeBody(msg, &body); err != nil {
		return domain.AssemblyDescriptor{}, err
	}

	return domain.AssemblyDescriptor{
		Path:            path,
		Name:            body.Name,
		Version:         body.Version,
		TargetFramework: body.TargetFramework,
	}, nil
}

// UnloadAssembly releases path in the running engine. With no engine running
// there is nothing to release.
func (s *Session) UnloadAssembly(ctx context.Context, path string) error {
	if !s.IsRunning() {
		return nil
	}

	msg, err := s.send(ctx, CommandUnload, Arguments{AssemblyPath: path})
	if err != nil {
		return err
	}
	if !msg.Success {
		return zerr.With(engineFailure(domain.ErrLoadFailure, msg), "assembly", path)
	}
	return nil
}

// ListChildren enumerates the direct children of key. Leaves yield an empty slice.
func (s *Session) ListChildren(ctx context.Context, key domain.MemberKey) ([]domain.ChildDescriptor, error) {
	msg, err := s.send(ctx, CommandEnumerate, Arguments{
		AssemblyPath: key.Assembly,
		Symbol:       key.Symbol,
	})
	if err != nil {
		return nil, err
	}
	if !msg.Success {
		return nil, zerr.With(engineFailure(domain.ErrDecompileFailure, msg), "member", key.String())
	}

	var body EnumerateBody
	if err := decodeBody(msg, &body); err != nil {
		return nil, err
	}

	children := make([]domain.ChildDescriptor, 0, len(body.Members))
	for _, m := range body.Members {
		kind := domain.MemberKind(m.Kind)
		if !kind.IsKnown() {
			s.logger.Debug("engine reported unknown member kind " + m.Kind + " for " + m.Symbol)
		}
		children = append(children, domain.ChildDescriptor{
			Name:   m.Name,
			Kind:   kind,
			Symbol: m.Symbol,
		})
	}
	return children, nil
}

// Decompile renders key in language.
func (s *Session) Decompile(ctx context.Context, key domain.MemberKey, language domain.Language) (string, error) {
	msg, err := s.send(ctx, CommandDecompile, Arguments{
		AssemblyPath: key.Assembly,
		Symbol:       key.Symbol,
		Language:     language.String(),
	})
	if err != nil {
		return "", err
	}
	if !msg.Success {
		err := zerr.With(engineFailure(domain.ErrDecompileFailure, msg), "member", key.String())
		return "", zerr.With(err, "language", language.String())
	}

	var body DecompileBody
	if err := decodeBody(msg, &body); err != nil {
		return "", err
	}
	return body.Code, nil
}

// send issues one request against the current generation inside a span.
func (s *Session) send(ctx context.Context, command string, args Arguments) (*Message, error) {
	ctx, span := s.tracer.Start(ctx, "engine."+command, trace.WithAttributes(
		attribute.String("ilview.command", command),
		attribute.String("ilview.assembly", args.AssemblyPath),
		attribute.String("ilview.symbol", args.Symbol),
	))
	defer span.End()

	p, err := s.handle.current()
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("ilview.generation", p.generation))

	msg, err := p.channel.Send(ctx, command, args)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if !msg.Success {
		span.SetStatus(codes.Error, failureMessage(msg))
	}
	return msg, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func decodeBody(msg *Message, v any) error {
	if err := json.Unmarshal(msg.Body, v); err != nil {
		merr := zerr.With(zerr.Wrap(domain.ErrMalformedResponse, "unexpected response body"), "command", msg.Command)
		merr = zerr.With(merr, "seq", msg.RequestSeq)
		return zerr.With(merr, "cause", err.Error())
	}
	return nil
}

func engineFailure(sentinel error, msg *Message) error {
	err := zerr.Wrap(sentinel, failureMessage(msg))
	if msg.Error != nil && msg.Error.Code != "" {
		err = zerr.With(err, "code", msg.Error.Code)
	}
	return err
}

func failureMessage(msg *Message) string {
	if msg.Error != nil && msg.Error.Message != "" {
		return msg.Error.Message
	}
	return "engine reported a failure"
}
