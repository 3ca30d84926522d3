package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitNoneKeepsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Exporter: "none"}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Exporter: "carrier-pigeon"}, nil)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInitStdoutExportsSpans(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := Init(context.Background(), Config{Exporter: "stdout", ServiceName: "board-test"}, &out)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "feed.Assemble")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, out.String(), "feed.Assemble")
	assert.Contains(t, out.String(), "board-test")
}
