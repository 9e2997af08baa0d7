package app_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerdomain "github.com/fd1az/solquote/business/ledger/domain"
	"github.com/fd1az/solquote/business/ledger/ledgertest"
	"github.com/fd1az/solquote/business/reserves/app"
	"github.com/fd1az/solquote/business/reserves/domain"
	unitsdomain "github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

const (
	mintWSOL = "So11111111111111111111111111111111111111112"
	mintUSDC = "EPjFWdd5AufqSSqeM2qJxHxSRuQQxcT1FZWSBN6fB1Gm"
)

type fakeDecoder struct {
	name  string
	res   *domain.PoolReserves
	calls int
	last  app.DecodeContext
}

func (d *fakeDecoder) Name() string { return d.name }

func (d *fakeDecoder) Attempt(_ context.Context, acc *ledgerdomain.Account, dc app.DecodeContext) (*domain.PoolReserves, error) {
	d.calls++
	d.last = dc
	if d.res == nil {
		return nil, apperror.New(apperror.CodeDecodeFailure)
	}
	return d.res, nil
}

type fakeRegistry struct {
	pairID    string
	pairErr   error
	byID      []domain.RegistryPool
	byPair    []domain.RegistryPool
	idCalls   int
	pairCalls int
}

func (f *fakeRegistry) PoolIDByPair(context.Context, string, string) (string, error) {
	return f.pairID, f.pairErr
}

func (f *fakeRegistry) PoolsByID(context.Context, ...string) ([]domain.RegistryPool, error) {
	f.idCalls++
	return f.byID, nil
}

func (f *fakeRegistry) PoolsByPair(context.Context, string, string) ([]domain.RegistryPool, error) {
	f.pairCalls++
	return f.byPair, nil
}

type fakeKeys struct {
	keys *domain.PoolKeys
}

func (f *fakeKeys) PoolKeys(context.Context, string) (*domain.PoolKeys, error) {
	if f.keys == nil {
		return nil, apperror.NotFound(apperror.CodeNotFound, "keys")
	}
	return f.keys, nil
}

type harness struct {
	pool     solana.PublicKey
	reader   *ledgertest.Reader
	provider *ledgertest.Provider
	registry *fakeRegistry
}

func newHarness() *harness {
	pool := solana.NewWallet().PublicKey()
	reader := ledgertest.NewReader()
	reader.SetAccount(pool, solana.NewWallet().PublicKey(), make([]byte, 64))
	return &harness{
		pool:     pool,
		reader:   reader,
		provider: ledgertest.NewProvider(reader),
		registry: &fakeRegistry{},
	}
}

func (h *harness) resolver(t *testing.T, keys app.PoolKeysSource, decoders ...app.Decoder) *app.Resolver {
	t.Helper()
	r, err := app.NewResolver(h.provider, decoders, h.registry, keys, logger.NewNop())
	require.NoError(t, err)
	return r
}

func ammSnapshot(poolID string) *domain.PoolReserves {
	return domain.NewPoolReserves(domain.PoolKindAMMv4, poolID,
		domain.VaultInfo{Address: "va", Amount: big.NewInt(1_000_000), Mint: mintWSOL},
		domain.VaultInfo{Address: "vb", Amount: big.NewInt(400_000), Mint: mintUSDC},
	)
}

func TestResolve_FirstMatchingDecoderWins(t *testing.T) {
	h := newHarness()
	amm := &fakeDecoder{name: "amm-v4", res: ammSnapshot(h.pool.String())}
	clmm := &fakeDecoder{name: "clmm"}

	res, err := h.resolver(t, nil, amm, clmm).Resolve(context.Background(), app.Request{PoolID: h.pool.String()})
	require.NoError(t, err)

	assert.Equal(t, domain.PoolKindAMMv4, res.Kind)
	assert.Equal(t, 0, res.Depth.Cmp(big.NewInt(400_000)))
	assert.Zero(t, clmm.calls)
	assert.Zero(t, h.registry.idCalls)
}

func TestResolve_DecodersInOrder(t *testing.T) {
	h := newHarness()
	amm := &fakeDecoder{name: "amm-v4"}
	clmmRes := ammSnapshot(h.pool.String())
	clmmRes.Kind = domain.PoolKindCLMM
	clmm := &fakeDecoder{name: "clmm", res: clmmRes}

	res, err := h.resolver(t, nil, amm, clmm).Resolve(context.Background(), app.Request{PoolID: h.pool.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.PoolKindCLMM, res.Kind)
	assert.Equal(t, 1, amm.calls)
}

func TestResolve_RegistryFallback(t *testing.T) {
	h := newHarness()
	h.registry.byID = []domain.RegistryPool{{
		ID:          h.pool.String(),
		MintA:       domain.MintRef{Address: mintWSOL, Decimals: 9},
		MintB:       domain.MintRef{Address: mintUSDC, Decimals: 6},
		MintAmountA: decimal.RequireFromString("10.5"),
		MintAmountB: decimal.RequireFromString("1575"),
		FeeRate:     decimal.RequireFromString("0.0025"),
	}}
	keys := &fakeKeys{keys: &domain.PoolKeys{VaultA: "vaultA", VaultB: "vaultB"}}

	res, err := h.resolver(t, keys, &fakeDecoder{name: "amm-v4"}).Resolve(context.Background(),
		app.Request{PoolID: h.pool.String()})
	require.NoError(t, err)

	assert.Equal(t, domain.PoolKindRegistry, res.Kind)
	assert.Equal(t, "10500000000", res.VaultA.Amount.String())
	assert.Equal(t, "1575000000", res.VaultB.Amount.String())
	assert.Equal(t, "vaultA", res.VaultA.Address)
	assert.Equal(t, "1575000000", res.Depth.String())
	require.NotNil(t, res.Fees)
	assert.Equal(t, "0.0025", res.Fees.TradeFeeRate.String())
}

func TestResolve_RegistryFallbackWithoutVaultAddresses(t *testing.T) {
	h := newHarness()
	h.registry.byID = []domain.RegistryPool{{
		ID:          h.pool.String(),
		MintA:       domain.MintRef{Address: mintWSOL, Decimals: 9},
		MintB:       domain.MintRef{Address: mintUSDC, Decimals: 6},
		MintAmountA: decimal.NewFromInt(2),
		MintAmountB: decimal.NewFromInt(300),
	}}

	var buf bytes.Buffer
	r, err := app.NewResolver(h.provider, []app.Decoder{&fakeDecoder{name: "amm-v4"}}, h.registry,
		&fakeKeys{}, logger.New(&buf, logger.LevelWarn, "test", nil))
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), app.Request{PoolID: h.pool.String()})
	require.NoError(t, err)

	assert.Equal(t, domain.PoolKindRegistry, res.Kind)
	assert.Empty(t, res.VaultA.Address)
	assert.Empty(t, res.VaultB.Address)
	assert.Equal(t, "300000000", res.VaultB.Amount.String())
	assert.Contains(t, buf.String(), "registry snapshot has no vault addresses")
	assert.Contains(t, buf.String(), h.pool.String())
}

func TestResolve_RegistryFallbackByPair(t *testing.T) {
	h := newHarness()
	h.registry.byPair = []domain.RegistryPool{{
		ID:          "other",
		MintA:       domain.MintRef{Address: mintWSOL, Decimals: 9},
		MintB:       domain.MintRef{Address: mintUSDC, Decimals: 6},
		MintAmountA: decimal.NewFromInt(1),
		MintAmountB: decimal.NewFromInt(150),
	}}

	res, err := h.resolver(t, nil).Resolve(context.Background(),
		app.Request{PoolID: h.pool.String(), MintA: mintWSOL, MintB: mintUSDC})
	require.NoError(t, err)
	assert.Equal(t, domain.PoolKindRegistry, res.Kind)
	assert.Equal(t, "other", res.PoolID)
	assert.Equal(t, 1, h.registry.pairCalls)
}

func TestResolve_AllSourcesFail(t *testing.T) {
	h := newHarness()

	res, err := h.resolver(t, nil, &fakeDecoder{name: "amm-v4"}, &fakeDecoder{name: "clmm"}).
		Resolve(context.Background(), app.Request{PoolID: h.pool.String()})
	assert.Nil(t, res)
	assert.True(t, apperror.HasCode(err, apperror.CodePoolReservesNotFound))
}

func TestResolve_UnresolvedPair(t *testing.T) {
	tests := []struct {
		name     string
		registry *fakeRegistry
		req      app.Request
	}{
		{name: "no pool", registry: &fakeRegistry{}, req: app.Request{MintA: mintWSOL, MintB: mintUSDC}},
		{name: "registry error", registry: &fakeRegistry{pairErr: errors.New("down")}, req: app.Request{MintA: mintWSOL, MintB: mintUSDC}},
		{name: "missing mint", registry: &fakeRegistry{pairID: "x"}, req: app.Request{MintA: mintWSOL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.registry = tt.registry
			_, err := h.resolver(t, nil).Resolve(context.Background(), tt.req)
			assert.True(t, apperror.HasCode(err, apperror.CodeUnresolvedPair), "got %v", err)
		})
	}
}

func TestResolve_PairLookupThenDecode(t *testing.T) {
	h := newHarness()
	h.registry.pairID = h.pool.String()
	amm := &fakeDecoder{name: "amm-v4", res: ammSnapshot(h.pool.String())}

	res, err := h.resolver(t, nil, amm).Resolve(context.Background(), app.Request{MintA: mintWSOL, MintB: mintUSDC})
	require.NoError(t, err)
	assert.Equal(t, h.pool.String(), res.PoolID)
}

func TestResolve_MissingAccountIsFatal(t *testing.T) {
	h := newHarness()
	missing := solana.NewWallet().PublicKey()
	h.registry.byID = []domain.RegistryPool{{ID: missing.String()}}

	_, err := h.resolver(t, nil, &fakeDecoder{name: "amm-v4"}).Resolve(context.Background(),
		app.Request{PoolID: missing.String()})
	assert.True(t, apperror.HasCode(err, apperror.CodeAccountNotFound))
	assert.Zero(t, h.registry.idCalls)
}

func TestResolve_RPCFailureSkipsDecoders(t *testing.T) {
	h := newHarness()
	h.reader.Fail(h.pool, apperror.New(apperror.CodeLedgerRPCError))
	amm := &fakeDecoder{name: "amm-v4", res: ammSnapshot(h.pool.String())}

	_, err := h.resolver(t, nil, amm).Resolve(context.Background(), app.Request{PoolID: h.pool.String()})
	assert.True(t, apperror.HasCode(err, apperror.CodePoolReservesNotFound))
	assert.Zero(t, amm.calls)
	assert.Equal(t, 1, h.registry.idCalls)
}

func TestResolve_InvalidPoolID(t *testing.T) {
	h := newHarness()
	_, err := h.resolver(t, nil).Resolve(context.Background(), app.Request{PoolID: "not-base58!"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestResolve_PerCallEndpoint(t *testing.T) {
	h := newHarness()
	amm := &fakeDecoder{name: "amm-v4", res: ammSnapshot(h.pool.String())}

	_, err := h.resolver(t, nil, amm).Resolve(context.Background(),
		app.Request{PoolID: h.pool.String(), Endpoint: "http://override"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://override"}, h.provider.Requested)
}

func TestResolver_EndpointDelegation(t *testing.T) {
	h := newHarness()
	r := h.resolver(t, nil)

	assert.Empty(t, r.Endpoint())
	r.SetEndpoint("http://global")
	assert.Equal(t, "http://global", r.Endpoint())
	r.ClearClientCache()
	assert.Equal(t, 2, h.provider.Cleared())
}

type nopScales struct{}

func (nopScales) Remember(context.Context, string, unitsdomain.Scale) {}

func TestResolve_PassesScaleRecorderToDecoders(t *testing.T) {
	h := newHarness()
	amm := &fakeDecoder{name: "amm-v4", res: ammSnapshot(h.pool.String())}
	scales := nopScales{}

	r, err := app.NewResolver(h.provider, []app.Decoder{amm}, h.registry, nil, logger.NewNop(), app.WithScaleRecorder(scales))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), app.Request{PoolID: h.pool.String(), MintA: mintWSOL, MintB: mintUSDC})
	require.NoError(t, err)

	assert.Equal(t, scales, amm.last.Scales)
	assert.Equal(t, mintWSOL, amm.last.MintA)
}
