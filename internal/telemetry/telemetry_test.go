package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestSetup_Stdout(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	var buf bytes.Buffer
	shutdown, err := Setup(Config{Exporter: "stdout", Out: &buf, ServiceVersion: "test"})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "analysis.Load")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"analysis.Load"`)
	assert.Contains(t, buf.String(), ServiceName)
}

func TestSetup_None(t *testing.T) {
	shutdown, err := Setup(Config{Exporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Unsupported(t *testing.T) {
	_, err := Setup(Config{Exporter: "otlp"})
	assert.ErrorContains(t, err, "unsupported trace exporter")
}
