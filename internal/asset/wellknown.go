package asset

// Well-known mainnet mints.
const (
	MintWSOL    = "So11111111111111111111111111111111111111112"
	MintUSDC    = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT    = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	MintRAY     = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"
	MintMSOL    = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
	MintJitoSOL = "J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn"
	MintBONK    = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	MintJUP     = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
	MintWIF     = "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm"
	MintPYTH    = "HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3"
)

var (
	SOL     = NewAssetWithName(MustAssetID(MintWSOL), "SOL", "Wrapped SOL", 9)
	USDC    = NewAssetWithName(MustAssetID(MintUSDC), "USDC", "USD Coin", 6)
	USDT    = NewAssetWithName(MustAssetID(MintUSDT), "USDT", "Tether USD", 6)
	RAY     = NewAssetWithName(MustAssetID(MintRAY), "RAY", "Raydium", 6)
	MSOL    = NewAssetWithName(MustAssetID(MintMSOL), "mSOL", "Marinade staked SOL", 9)
	JitoSOL = NewAssetWithName(MustAssetID(MintJitoSOL), "JitoSOL", "Jito Staked SOL", 9)
	BONK    = NewAssetWithName(MustAssetID(MintBONK), "BONK", "Bonk", 5)
	JUP     = NewAssetWithName(MustAssetID(MintJUP), "JUP", "Jupiter", 6)
	WIF     = NewAssetWithName(MustAssetID(MintWIF), "WIF", "dogwifhat", 6)
	PYTH    = NewAssetWithName(MustAssetID(MintPYTH), "PYTH", "Pyth Network", 6)
)

// DefaultRegistry returns a registry holding the well-known mints. It is the
// static scale table consulted before any remote lookup.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range []*Asset{SOL, USDC, USDT, RAY, MSOL, JitoSOL, BONK, JUP, WIF, PYTH} {
		r.Register(a)
	}
	return r
}

// MustNewToken creates an Asset for a mint not in the default table.
func MustNewToken(mint, symbol, name string, decimals uint8) *Asset {
	return NewAssetWithName(MustAssetID(mint), symbol, name, decimals)
}
