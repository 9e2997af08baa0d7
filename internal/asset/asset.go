package asset

// Asset is the display metadata of one mint. Identity is the mint, never
// the symbol.
type Asset struct {
	id       AssetID
	symbol   string
	name     string
	decimals uint8
}

// NewAsset creates an Asset. SPL mints carry at most 255 decimals but
// anything above 18 is a data error.
func NewAsset(id AssetID, symbol string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 18 {
		panic("asset: suspicious decimals (>18)")
	}

	return &Asset{
		id:       id,
		symbol:   symbol,
		decimals: decimals,
	}
}

// NewAssetWithName creates an Asset with a human-readable name.
func NewAssetWithName(id AssetID, symbol, name string, decimals uint8) *Asset {
	a := NewAsset(id, symbol, decimals)
	a.name = name
	return a
}

func (a *Asset) ID() AssetID {
	return a.id
}

// Mint returns the base58 mint address.
func (a *Asset) Mint() string {
	return a.id.String()
}

func (a *Asset) Symbol() string {
	return a.symbol
}

// Name falls back to the symbol when no name was set.
func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

func (a *Asset) Decimals() uint8 {
	return a.decimals
}

func (a *Asset) String() string {
	return a.symbol
}

// Equals compares two Assets by mint.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.id.Equals(other.id)
}
