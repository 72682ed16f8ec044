package miner

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
)

var (
	ErrInitDevice         = errors.New("device initialization failed")
	ErrInsufficientMemory = errors.New("insufficient device memory")
	ErrSearch             = errors.New("search failed")
)

// Candidate is a nonce the device believes meets the boundary
type Candidate struct {
	Nonce   uint64
	MixHash common.Hash
}

type SearchResult struct {
	Candidates []Candidate
	Hashes     uint64 // nonces evaluated by the batch
	NextNonce  uint64
}

// Backend drives one physical device. All methods but Kick are called from
// the miner goroutine
type Backend interface {
	InitDevice(d DeviceDescriptor) error
	// InitEpoch prepares the device for ec. Returning an error wrapping
	// ErrInsufficientMemory pauses the device for lack of memory
	InitEpoch(ec *ethash.EpochContext) error
	// Search runs one bounded batch starting at startNonce. It returns early
	// when kicked or when ctx is done
	Search(ctx context.Context, work mining.WorkPackage, startNonce uint64) (SearchResult, error)
	// Kick interrupts the running batch, it may be called from any goroutine
	Kick()
}
