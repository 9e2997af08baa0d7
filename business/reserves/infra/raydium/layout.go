// Package raydium decodes Raydium pool accounts and talks to the Raydium v3
// pool API.
package raydium

import (
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	tracerName = "github.com/fd1az/solquote/business/reserves/infra/raydium"
	meterName  = "github.com/fd1az/solquote/business/reserves/infra/raydium"
)

// Program ids on mainnet.
var (
	AMMv4ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	CLMMProgramID  = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
)

// AMMv4StateSize is the size of a LIQUIDITY_STATE_V4 account.
const AMMv4StateSize = 752

// AMMv4State is the LIQUIDITY_STATE_V4 account.
type AMMv4State struct {
	Status                 uint64
	Nonce                  uint64
	MaxOrder               uint64
	Depth                  uint64
	BaseDecimal            uint64
	QuoteDecimal           uint64
	State                  uint64
	ResetFlag              uint64
	MinSize                uint64
	VolMaxCutRatio         uint64
	AmountWaveRatio        uint64
	BaseLotSize            uint64
	QuoteLotSize           uint64
	MinPriceMultiplier     uint64
	MaxPriceMultiplier     uint64
	SystemDecimalValue     uint64
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
	BaseNeedTakePnl        uint64
	QuoteNeedTakePnl       uint64
	QuoteTotalPnl          uint64
	BaseTotalPnl           uint64
	PoolOpenTime           uint64
	PunishPcAmount         uint64
	PunishCoinAmount       uint64
	OrderbookToInitTime    uint64

	SwapBaseInAmount   bin.Uint128
	SwapQuoteOutAmount bin.Uint128
	SwapBase2QuoteFee  uint64
	SwapQuoteInAmount  bin.Uint128
	SwapBaseOutAmount  bin.Uint128
	SwapQuote2BaseFee  uint64

	BaseVault       solana.PublicKey
	QuoteVault      solana.PublicKey
	BaseMint        solana.PublicKey
	QuoteMint       solana.PublicKey
	LpMint          solana.PublicKey
	OpenOrders      solana.PublicKey
	MarketID        solana.PublicKey
	MarketProgramID solana.PublicKey
	TargetOrders    solana.PublicKey
	WithdrawQueue   solana.PublicKey
	LpVault         solana.PublicKey
	Owner           solana.PublicKey

	LpReserve uint64
	Padding   [3]uint64
}

// DecodeAMMv4State decodes data as LIQUIDITY_STATE_V4.
func DecodeAMMv4State(data []byte) (*AMMv4State, error) {
	var st AMMv4State
	if err := bin.NewBorshDecoder(data).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// CLMMPoolStateSize is the size of a CLMM PoolState account.
const CLMMPoolStateSize = 1544

// clmmPoolStateDiscriminator is the Anchor account discriminator of PoolState.
var clmmPoolStateDiscriminator = anchorDiscriminator("PoolState")

func anchorDiscriminator(account string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + account))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// CLMMPoolState is the leading part of a CLMM PoolState account, up to the
// current tick. Later fields are not needed.
type CLMMPoolState struct {
	Discriminator [8]byte
	Bump          [1]uint8
	AmmConfig     solana.PublicKey
	Owner         solana.PublicKey
	TokenMint0    solana.PublicKey
	TokenMint1    solana.PublicKey
	TokenVault0   solana.PublicKey
	TokenVault1   solana.PublicKey
	ObservationID solana.PublicKey
	MintDecimals0 uint8
	MintDecimals1 uint8
	TickSpacing   uint16
	Liquidity     bin.Uint128
	SqrtPriceX64  bin.Uint128
	TickCurrent   int32
}

// DecodeCLMMPoolState decodes the leading fields of a PoolState account.
func DecodeCLMMPoolState(data []byte) (*CLMMPoolState, error) {
	var st CLMMPoolState
	if err := bin.NewBorshDecoder(data).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}
