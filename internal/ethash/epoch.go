package ethash

import (
	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
)

// EpochContext carries the sizing of an epoch and owns its light cache
type EpochContext struct {
	Epoch         int
	Mode          Mode
	Seed          common.Hash
	LightNumItems int
	LightSize     uint64
	DagNumItems   int
	DagSize       uint64

	light []uint32
}

// NewEpochContext sizes the epoch and generates its light cache, which takes
// about a second per epoch in normal mode
func NewEpochContext(epoch int, mode Mode) *EpochContext {
	ec := NewEpochSizing(epoch, mode)
	ec.light = generateCache(ec.LightSize, ec.Seed)
	return ec
}

// NewEpochSizing returns the epoch parameters without a light cache
func NewEpochSizing(epoch int, mode Mode) *EpochContext {
	lightSize := CacheSize(epoch, mode)
	dagSize := DatasetSize(epoch, mode)
	return &EpochContext{
		Epoch:         epoch,
		Mode:          mode,
		Seed:          SeedHash(epoch),
		LightNumItems: int(lightSize / hashBytes),
		LightSize:     lightSize,
		DagNumItems:   int(dagSize / mixBytes),
		DagSize:       dagSize,
	}
}

// HasLight reports whether the light cache is present
func (ec *EpochContext) HasLight() bool {
	return ec.light != nil
}

// Hash evaluates ethash for the nonce using the light cache. It must not be
// called after Release
func (ec *EpochContext) Hash(header common.Hash, nonce uint64) mining.Result {
	mix, final := hashimotoLight(ec.DagSize, ec.light, header, nonce)
	return mining.Result{Value: final, MixHash: mix}
}

// Release drops the light cache
func (ec *EpochContext) Release() {
	ec.light = nil
}
