package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopTracer(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.False(t, span.IsRecording())
}

func TestTracer(t *testing.T) {
	// the global provider is a no-op until Setup runs
	_, span := Tracer("game").Start(context.Background(), "tick")
	defer span.End()
	assert.False(t, span.IsRecording())
}
