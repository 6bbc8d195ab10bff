// Package telemetry turns engine request spans into debug log lines.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.trai.ch/ilview/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor and reports finished spans to the logger.
type Bridge struct {
	logger ports.Logger
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing; spans are reported once they end.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, its target and how long it took.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	msg := s.Name()
	if target := spanTarget(s.Attributes()); target != "" {
		msg += " " + target
	}
	msg += fmt.Sprintf(" (%s)", s.EndTime().Sub(s.StartTime()).Round(time.Microsecond))

	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "failed"
		}
		msg += ": " + desc
	}

	b.logger.Debug(msg)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// NewTracerProvider returns a provider that reports every span through b.
func NewTracerProvider(b *Bridge) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(b))
}

func spanTarget(attrs []attribute.KeyValue) string {
	var assembly, symbol string
	for _, kv := range attrs {
		switch kv.Key {
		case "ilview.assembly":
			assembly = kv.Value.AsString()
		case "ilview.symbol":
			symbol = kv.Value.AsString()
		}
	}
	if symbol != "" {
		return assembly + "!" + symbol
	}
	return assembly
}
