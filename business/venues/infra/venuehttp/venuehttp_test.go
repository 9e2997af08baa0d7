package venuehttp

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	unitsdomain "github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/apperror"
)

func TestBaseToHuman(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		scale   uint8
		want    string
		wantErr bool
	}{
		{name: "usdc", base: "150250000", scale: 6, want: "150.25"},
		{name: "sol", base: "1000000000", scale: 9, want: "1"},
		{name: "padded", base: " 42 ", scale: 0, want: "42"},
		{name: "empty", base: "", scale: 6, wantErr: true},
		{name: "garbage", base: "12abc", scale: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BaseToHuman(tt.base, unitsdomain.Scale(tt.scale))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := map[string]string{
		"0.12":   "0.12",
		"0.12%":  "0.12",
		"-0.05%": "0.05",
		"":       "0",
		"n/a":    "0",
	}
	for in, want := range tests {
		assert.True(t, ParsePercent(in).Equal(decimal.RequireFromString(want)), "ParsePercent(%q)", in)
	}
}

func TestVenue_DoWrapsFailures(t *testing.T) {
	v, err := New("test", "http://localhost", Config{}, otel.Tracer("test"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, v.Config.Timeout)
	assert.Equal(t, 50, v.Config.SlippageBps)

	err = v.Do(context.Background(), func(context.Context) error { return errors.New("boom") })
	assert.True(t, apperror.HasCode(err, apperror.CodeVenueQuoteFailed))

	assert.NoError(t, v.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestVenue_DoOpensCircuit(t *testing.T) {
	v, err := New("flaky", "http://localhost", Config{}, otel.Tracer("test"))
	require.NoError(t, err)

	var last error
	for i := 0; i < 20; i++ {
		last = v.Do(context.Background(), func(context.Context) error { return errors.New("down") })
	}
	assert.True(t, apperror.HasCode(last, apperror.CodeCircuitOpen), "got %v", last)
}
