package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/solquote/internal/config"
	"github.com/fd1az/solquote/internal/logger"
)

func TestBuildAdapters_OnlyEnabled(t *testing.T) {
	cfg := config.VenuesConfig{
		Jupiter:   config.VenueConfig{Enabled: true},
		Raydium:   config.VenueConfig{Enabled: false},
		OpenOcean: config.VenueConfig{Enabled: true},
		OKX:       config.OKXConfig{VenueConfig: config.VenueConfig{Enabled: true}},
	}

	adapters, err := BuildAdapters(cfg, logger.NewNop())
	require.NoError(t, err)

	ids := make([]string, 0, len(adapters))
	for _, a := range adapters {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"jupiter", "openocean", "okx"}, ids)
}

func TestBuildAdapters_NoneEnabled(t *testing.T) {
	adapters, err := BuildAdapters(config.VenuesConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.Empty(t, adapters)
}
