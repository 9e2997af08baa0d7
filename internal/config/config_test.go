package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "solquote", cfg.App.Name)
	assert.Equal(t, DefaultRPCURL, cfg.Ledger.RPCURL)
	assert.Equal(t, 30*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Venues.Jupiter.Timeout)
	assert.True(t, cfg.Venues.OKX.Enabled)
	assert.False(t, cfg.Venues.OKX.HasCredentials())
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOLANA_RPC_URL", "https://rpc.example.org")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OKX_API_KEY", "k")
	t.Setenv("OKX_SECRET_KEY", "s")
	t.Setenv("OKX_PASSPHRASE", "p")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.org", cfg.Ledger.RPCURL)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.True(t, cfg.Venues.OKX.HasCredentials())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solquote.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
venues:
  okx:
    enabled: false
  openocean:
    timeout: 3s
watch:
  pairs: ["SOL-USDC", "RAY-SOL"]
  amounts: [0.5, 2]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Venues.OKX.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Venues.OpenOcean.Timeout)
	assert.Equal(t, []string{"SOL-USDC", "RAY-SOL"}, cfg.Watch.Pairs)
	assert.Len(t, cfg.Watch.AmountsDecimal(), 2)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad commitment", func(c *Config) { c.Ledger.Commitment = "eventually" }},
		{"bad cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"no venues", func(c *Config) {
			c.Venues.Jupiter.Enabled = false
			c.Venues.Raydium.Enabled = false
			c.Venues.OpenOcean.Enabled = false
			c.Venues.OKX.Enabled = false
		}},
		{"bad pair", func(c *Config) { c.Watch.Pairs = []string{"SOLUSDC"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSplitPair(t *testing.T) {
	in, out, ok := SplitPair("SOL-USDC")
	assert.True(t, ok)
	assert.Equal(t, "SOL", in)
	assert.Equal(t, "USDC", out)

	_, _, ok = SplitPair("-USDC")
	assert.False(t, ok)
}
