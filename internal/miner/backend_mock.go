package miner

import (
	"context"
	"time"

	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
	"go.uber.org/atomic"
)

// BackendMock is a scriptable Backend. Nil funcs succeed and searches return
// an empty batch of BatchHashes nonces
type BackendMock struct {
	InitDeviceFunc func(d DeviceDescriptor) error
	InitEpochFunc  func(ec *ethash.EpochContext) error
	SearchFunc     func(ctx context.Context, work mining.WorkPackage, startNonce uint64) (SearchResult, error)
	BatchHashes    uint64

	Kicks *atomic.Int32
}

func NewBackendMock() *BackendMock {
	return &BackendMock{BatchHashes: 1000, Kicks: atomic.NewInt32(0)}
}

func (b *BackendMock) InitDevice(d DeviceDescriptor) error {
	if b.InitDeviceFunc != nil {
		return b.InitDeviceFunc(d)
	}
	return nil
}

func (b *BackendMock) InitEpoch(ec *ethash.EpochContext) error {
	if b.InitEpochFunc != nil {
		return b.InitEpochFunc(ec)
	}
	return nil
}

func (b *BackendMock) Search(ctx context.Context, work mining.WorkPackage, startNonce uint64) (SearchResult, error) {
	if b.SearchFunc != nil {
		return b.SearchFunc(ctx, work, startNonce)
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Millisecond):
	}
	return SearchResult{Hashes: b.BatchHashes, NextNonce: startNonce + b.BatchHashes}, nil
}

func (b *BackendMock) Kick() {
	b.Kicks.Inc()
}
