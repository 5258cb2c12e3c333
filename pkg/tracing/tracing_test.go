package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_DisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{
		ServiceName: "auth",
		Enabled:     false,
	})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracer_ReturnsNamedTracer(t *testing.T) {
	tr := Tracer("auth")
	require.NotNil(t, tr)

	_, span := tr.Start(context.Background(), "op")
	span.End()
}
