package raydium

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/fd1az/solquote/business/reserves/domain"
	unitsdomain "github.com/fd1az/solquote/business/units/domain"
)

// layoutWriter builds little-endian account images.
type layoutWriter struct {
	buf bytes.Buffer
}

func (w *layoutWriter) u8(v uint8) { w.buf.WriteByte(v) }

func (w *layoutWriter) u16(v uint16) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }

func (w *layoutWriter) i32(v int32) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }

func (w *layoutWriter) u64(v uint64) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }

func (w *layoutWriter) u128(lo, hi uint64) {
	w.u64(lo)
	w.u64(hi)
}

func (w *layoutWriter) key(pk solana.PublicKey) { w.buf.Write(pk[:]) }

func (w *layoutWriter) padTo(n int) []byte {
	if w.buf.Len() < n {
		w.buf.Write(make([]byte, n-w.buf.Len()))
	}
	return w.buf.Bytes()
}

type ammFixture struct {
	baseVault, quoteVault solana.PublicKey
	baseMint, quoteMint   solana.PublicKey
	lpMint                solana.PublicKey
	openTime              uint64
}

func newAMMFixture() ammFixture {
	return ammFixture{
		baseVault:  solana.NewWallet().PublicKey(),
		quoteVault: solana.NewWallet().PublicKey(),
		baseMint:   solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"),
		quoteMint:  solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qJxHxSRuQQxcT1FZWSBN6fB1Gm"),
		lpMint:     solana.NewWallet().PublicKey(),
		openTime:   1_700_000_000,
	}
}

func (f ammFixture) bytes() []byte {
	var w layoutWriter
	u64s := make([]uint64, 32)
	u64s[4] = 9      // base decimals
	u64s[5] = 6      // quote decimals
	u64s[18] = 25    // trade fee numerator
	u64s[19] = 10000 // trade fee denominator
	u64s[20] = 12    // pnl numerator
	u64s[21] = 100   // pnl denominator
	u64s[22] = 25    // swap fee numerator
	u64s[23] = 10000 // swap fee denominator
	u64s[28] = f.openTime
	for _, v := range u64s {
		w.u64(v)
	}

	w.u128(1000, 0) // swap base in
	w.u128(2000, 0) // swap quote out
	w.u64(0)
	w.u128(3000, 0) // swap quote in
	w.u128(4000, 0) // swap base out
	w.u64(0)

	w.key(f.baseVault)
	w.key(f.quoteVault)
	w.key(f.baseMint)
	w.key(f.quoteMint)
	w.key(f.lpMint)
	for i := 0; i < 7; i++ {
		w.key(solana.PublicKey{})
	}
	w.u64(0)
	return w.padTo(AMMv4StateSize)
}

type clmmFixture struct {
	mint0, mint1   solana.PublicKey
	vault0, vault1 solana.PublicKey
	tickSpacing    uint16
	tickCurrent    int32
	sqrtPriceX64   uint64
	liquidity      uint64
}

func (f clmmFixture) bytes() []byte {
	var w layoutWriter
	w.buf.Write(clmmPoolStateDiscriminator[:])
	w.u8(255)
	w.key(solana.NewWallet().PublicKey()) // amm config
	w.key(solana.NewWallet().PublicKey()) // owner
	w.key(f.mint0)
	w.key(f.mint1)
	w.key(f.vault0)
	w.key(f.vault1)
	w.key(solana.NewWallet().PublicKey()) // observation
	w.u8(9)
	w.u8(6)
	w.u16(f.tickSpacing)
	w.u128(f.liquidity, 0)
	w.u128(f.sqrtPriceX64, 0)
	w.i32(f.tickCurrent)
	return w.padTo(CLMMPoolStateSize)
}

type fakeKeys struct {
	keys  *domain.PoolKeys
	err   error
	calls int
}

func (f *fakeKeys) PoolKeys(_ context.Context, id string) (*domain.PoolKeys, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.keys, nil
}

type recordedScales map[string]unitsdomain.Scale

func (r recordedScales) Remember(_ context.Context, mint string, scale unitsdomain.Scale) {
	r[mint] = scale
}
