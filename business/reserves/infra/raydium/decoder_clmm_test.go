package raydium

import (
	"context"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/solquote/business/ledger/ledgertest"
	"github.com/fd1az/solquote/business/reserves/app"
	"github.com/fd1az/solquote/business/reserves/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

func sqrtPriceX64(price float64) uint64 {
	s := new(big.Float).SetFloat64(math.Sqrt(price))
	s.Mul(s, new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64)))
	v, _ := s.Uint64()
	return v
}

type clmmSetup struct {
	pool    solana.PublicKey
	fixture clmmFixture
	reader  *ledgertest.Reader
	keys    *fakeKeys
}

func newCLMMSetup() clmmSetup {
	f := clmmFixture{
		mint0:        solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"),
		mint1:        solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qJxHxSRuQQxcT1FZWSBN6fB1Gm"),
		vault0:       solana.NewWallet().PublicKey(),
		vault1:       solana.NewWallet().PublicKey(),
		tickSpacing:  60,
		tickCurrent:  -18972,
		sqrtPriceX64: sqrtPriceX64(0.15),
		liquidity:    5_000_000,
	}
	pool := solana.NewWallet().PublicKey()

	reader := ledgertest.NewReader()
	reader.SetAccount(pool, CLMMProgramID, f.bytes())
	reader.SetMint(f.mint0, 0, 9)
	reader.SetMint(f.mint1, 0, 6)
	reader.SetBalance(f.vault0, 2_000_000_000_000, 9)
	reader.SetBalance(f.vault1, 310_000_000_000, 6)

	keys := &fakeKeys{keys: &domain.PoolKeys{
		ID:              pool.String(),
		ProgramID:       CLMMProgramID.String(),
		VaultA:          f.vault0.String(),
		VaultB:          f.vault1.String(),
		TickSpacing:     60,
		TradeFeeRate:    2500,
		ProtocolFeeRate: 120000,
	}}

	return clmmSetup{pool: pool, fixture: f, reader: reader, keys: keys}
}

func (s clmmSetup) attempt(t *testing.T, mintA, mintB string) (*domain.PoolReserves, error) {
	t.Helper()
	acc, err := s.reader.GetAccount(context.Background(), s.pool)
	require.NoError(t, err)
	d := NewCLMMDecoder(s.keys, logger.NewNop())
	return d.Attempt(context.Background(), acc, app.DecodeContext{Reader: s.reader, MintA: mintA, MintB: mintB})
}

func TestCLMMDecoder_Attempt(t *testing.T) {
	s := newCLMMSetup()

	res, err := s.attempt(t, s.fixture.mint0.String(), s.fixture.mint1.String())
	require.NoError(t, err)

	assert.Equal(t, domain.PoolKindCLMM, res.Kind)
	assert.Equal(t, s.fixture.vault0.String(), res.VaultA.Address)
	assert.Equal(t, 0, res.Depth.Cmp(big.NewInt(310_000_000_000)))

	c := res.Concentrated
	require.NotNil(t, c)
	assert.Equal(t, int32(-18972), c.TickCurrent)
	assert.Equal(t, int32(-21600), c.TickLower)
	assert.Equal(t, int32(-18000), c.TickUpper)
	assert.Equal(t, uint8(9), c.DecimalsA)
	assert.Equal(t, uint8(6), c.DecimalsB)
	assert.Equal(t, "5000000", c.Liquidity.String())

	current, _ := c.PriceCurrent.Float64()
	assert.InDelta(t, 150.0, current, 0.001)
	lower, _ := c.PriceLower.Float64()
	upper, _ := c.PriceUpper.Float64()
	assert.Less(t, lower, current)
	assert.Greater(t, upper, current)

	require.NotNil(t, res.Fees)
	assert.Equal(t, "0.0025", res.Fees.TradeFeeRate.String())
	assert.Equal(t, "0.12", res.Fees.ProtocolFeeRate.String())
}

func TestCLMMDecoder_RemembersMintDecimals(t *testing.T) {
	s := newCLMMSetup()
	acc, err := s.reader.GetAccount(context.Background(), s.pool)
	require.NoError(t, err)

	scales := recordedScales{}
	_, err = NewCLMMDecoder(s.keys, logger.NewNop()).Attempt(context.Background(), acc, app.DecodeContext{
		Reader: s.reader,
		MintA:  s.fixture.mint0.String(),
		MintB:  s.fixture.mint1.String(),
		Scales: scales,
	})
	require.NoError(t, err)

	assert.Equal(t, recordedScales{
		s.fixture.mint0.String(): 9,
		s.fixture.mint1.String(): 6,
	}, scales)
}

func TestCLMMDecoder_AcceptsReversedPair(t *testing.T) {
	s := newCLMMSetup()

	res, err := s.attempt(t, s.fixture.mint1.String(), s.fixture.mint0.String())
	require.NoError(t, err)
	assert.Equal(t, s.fixture.mint0.String(), res.VaultA.Mint)
}

func TestCLMMDecoder_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*clmmSetup)
		mintA  string
		mintB  string
	}{
		{
			name:  "missing mints",
			mintA: "",
			mintB: "",
		},
		{
			name:  "other pair",
			mintA: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
			mintB: "EPjFWdd5AufqSSqeM2qJxHxSRuQQxcT1FZWSBN6fB1Gm",
		},
		{
			name: "wrong owner",
			mutate: func(s *clmmSetup) {
				s.reader.SetAccount(s.pool, AMMv4ProgramID, s.fixture.bytes())
			},
		},
		{
			name: "bad discriminator",
			mutate: func(s *clmmSetup) {
				data := s.fixture.bytes()
				data[0] ^= 0xff
				s.reader.SetAccount(s.pool, CLMMProgramID, data)
			},
		},
		{
			name: "keys unavailable",
			mutate: func(s *clmmSetup) {
				s.keys.err = errors.New("registry down")
			},
		},
		{
			name: "mint read fails",
			mutate: func(s *clmmSetup) {
				s.reader.Fail(s.fixture.mint1, errors.New("timeout"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newCLMMSetup()
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			mintA, mintB := tt.mintA, tt.mintB
			if tt.mutate != nil {
				mintA, mintB = s.fixture.mint0.String(), s.fixture.mint1.String()
			}

			res, err := s.attempt(t, mintA, mintB)
			assert.Nil(t, res)
			assert.True(t, apperror.HasCode(err, apperror.CodeDecodeFailure), "got %v", err)
		})
	}
}
