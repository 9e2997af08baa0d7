package apm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/codes"

	"github.com/fd1az/solquote/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders("x-team=abc, broken ,api-key=k=v")
	assert.Equal(t, map[string]string{"x-team": "abc", "api-key": "k=v"}, got)
	assert.Empty(t, ParseHeaders(""))
}

func TestNewTraceProvider_DegradesToNoop(t *testing.T) {
	tp := NewTraceProvider(logger.NewNop(), Config{Exporter: "carrier-pigeon"})
	require.NoError(t, tp.Stop())

	tp = NewTraceProvider(logger.NewNop(), Config{Exporter: ZipkinExporter})
	require.NoError(t, tp.Stop())
}

func TestNoticeError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	_, span := tp.Tracer("test").Start(t.Context(), "op")
	NoticeError(span, errors.New("boom"))
	NoticeError(span, nil)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
}
