package asset

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is a thread-safe table of known mints.
type Registry struct {
	byID     map[AssetID]*Asset
	bySymbol map[string][]*Asset
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[string][]*Asset),
	}
}

// Register adds a. Panics if the mint is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}

	r.byID[id] = a
	sym := strings.ToUpper(a.Symbol())
	r.bySymbol[sym] = append(r.bySymbol[sym], a)
}

// Get retrieves an asset by id.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// GetByMint retrieves an asset by base58 mint. Malformed input is simply
// not found.
func (r *Registry) GetByMint(mint string) (*Asset, bool) {
	id, err := ParseAssetID(mint)
	if err != nil {
		return nil, false
	}
	return r.Get(id)
}

// Decimals returns the registered scale for mint.
func (r *Registry) Decimals(mint string) (uint8, bool) {
	a, ok := r.GetByMint(mint)
	if !ok {
		return 0, false
	}
	return a.Decimals(), true
}

// GetBySymbol returns every asset with symbol, case-insensitively.
func (r *Registry) GetBySymbol(symbol string) []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := r.bySymbol[strings.ToUpper(symbol)]
	if len(assets) == 0 {
		return nil
	}

	result := make([]*Asset, len(assets))
	copy(result, assets)
	return result
}

// Lookup resolves either a symbol or a mint address. Symbols that map to
// several mints are ambiguous and not resolved.
func (r *Registry) Lookup(symbolOrMint string) (*Asset, bool) {
	if byMint, ok := r.GetByMint(symbolOrMint); ok {
		return byMint, true
	}
	matches := r.GetBySymbol(symbolOrMint)
	if len(matches) != 1 {
		return nil, false
	}
	return matches[0], true
}

// All returns every registered asset sorted by symbol.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	result := make([]*Asset, 0, len(r.byID))
	for _, a := range r.byID {
		result = append(result, a)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol() < result[j].Symbol()
	})
	return result
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) Has(id AssetID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}
