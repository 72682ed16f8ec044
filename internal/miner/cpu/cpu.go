package cpu

import (
	"context"
	"errors"
	"fmt"
	"time"

	humanize "github.com/dustin/go-humanize"
	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
	"go.uber.org/atomic"
)

// BlockSize is the number of nonces evaluated between new work checks
const BlockSize = 30

const DefaultBatchTime = 250 * time.Millisecond

var ErrNoLightCache = errors.New("epoch context has no light cache")

// Backend mines on a CPU core with ethash light evaluation. It is slow and
// meant for development and benchmarking
type Backend struct {
	descriptor miner.DeviceDescriptor
	batchTime  time.Duration
	newWork    *atomic.Bool
	ec         *ethash.EpochContext
	log        interfaces.ILogger
}

func NewBackend(batchTime time.Duration, log interfaces.ILogger) *Backend {
	if batchTime <= 0 {
		batchTime = DefaultBatchTime
	}
	return &Backend{
		batchTime: batchTime,
		newWork:   atomic.NewBool(false),
		log:       log,
	}
}

func (b *Backend) InitDevice(d miner.DeviceDescriptor) error {
	b.descriptor = d
	b.log.Infof("using CPU: %d %s memory: %s", d.CpuNumber, d.BoardName, humanize.IBytes(d.TotalMemory))
	return nil
}

func (b *Backend) InitEpoch(ec *ethash.EpochContext) error {
	if !ec.HasLight() {
		return ErrNoLightCache
	}
	if b.descriptor.TotalMemory != 0 && ec.LightSize > b.descriptor.TotalMemory {
		return lib.WrapError(miner.ErrInsufficientMemory, fmt.Errorf("epoch %d requires %s, available %s",
			ec.Epoch, humanize.IBytes(ec.LightSize), humanize.IBytes(b.descriptor.TotalMemory)))
	}
	b.ec = ec
	return nil
}

func (b *Backend) Search(ctx context.Context, work mining.WorkPackage, startNonce uint64) (miner.SearchResult, error) {
	res := miner.SearchResult{NextNonce: startNonce}
	if b.ec == nil || b.ec.Epoch != work.Epoch {
		return res, fmt.Errorf("epoch %d is not initialized", work.Epoch)
	}

	deadline := time.Now().Add(b.batchTime)
	nonce := startNonce

	for {
		if b.newWork.CAS(true, false) || ctx.Err() != nil || !time.Now().Before(deadline) {
			break
		}
		for i := 0; i < BlockSize; i++ {
			r := b.ec.Hash(work.Header, nonce)
			if mining.MeetsBoundary(r.Value, work.Boundary) {
				res.Candidates = append(res.Candidates, miner.Candidate{Nonce: nonce, MixHash: r.MixHash})
			}
			nonce++
		}
		res.Hashes += BlockSize
	}

	res.NextNonce = nonce
	return res, nil
}

func (b *Backend) Kick() {
	b.newWork.Store(true)
}
