// =============================
// File: internal/amm/factory.go
// =============================
package amm

import (
	"sync"

	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/types"
)

type pairKey struct {
	token   types.Address
	wrapper types.Address
}

// Factory registers pools by token pair. CreatePair is idempotent: asking
// for an existing pair returns its address again, so a migration retried
// after a downstream failure does not strand a half-created pair.
type Factory struct {
	log *zap.Logger

	mu    sync.Mutex
	pools map[pairKey]*Pool
}

// NewFactory returns an empty pool registry.
func NewFactory(logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		log:   logger.Named("amm.factory"),
		pools: make(map[pairKey]*Pool),
	}
}

// CreatePair registers (or finds) the pool for tokenAddr against the
// wrapped-native asset and returns its ledger address.
func (f *Factory) CreatePair(tokenAddr, nativeWrapper types.Address) (types.Address, error) {
	if tokenAddr.IsZero() || nativeWrapper.IsZero() {
		return "", ErrInvalidAmount
	}
	key := pairKey{token: tokenAddr, wrapper: nativeWrapper}

	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pools[key]; ok {
		return p.Address(), nil
	}

	addr := types.Address("pair:" + tokenAddr.String() + "/" + nativeWrapper.String())
	p := newPool(addr, tokenAddr, nativeWrapper)
	f.pools[key] = p
	f.log.Info("pair created",
		zap.String("token", tokenAddr.String()),
		zap.String("wrapper", nativeWrapper.String()),
		zap.String("pair", addr.String()))
	return addr, nil
}

// Pair looks up the pool for a token pair.
func (f *Factory) Pair(tokenAddr, nativeWrapper types.Address) (*Pool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pools[pairKey{token: tokenAddr, wrapper: nativeWrapper}]
	return p, ok
}
