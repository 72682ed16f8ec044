package ethash

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
)

const DefaultCacheEpochs = 3

// Verifier recomputes solutions on the host. It keeps light caches of the
// most recently used epochs
type Verifier struct {
	mode   Mode
	caches *lru.Cache[int, *EpochContext]
	mu     sync.Mutex // serializes cache generation
	log    interfaces.ILogger
}

func NewVerifier(mode Mode, cacheEpochs int, log interfaces.ILogger) *Verifier {
	if cacheEpochs <= 0 {
		cacheEpochs = DefaultCacheEpochs
	}
	return &Verifier{
		mode:   mode,
		caches: lru.NewCache[int, *EpochContext](cacheEpochs),
		log:    log,
	}
}

func (v *Verifier) Mode() Mode {
	return v.mode
}

// Context returns the light context of the epoch, generating it when missing
func (v *Verifier) Context(epoch int) *EpochContext {
	if ec, ok := v.caches.Get(epoch); ok {
		return ec
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if ec, ok := v.caches.Get(epoch); ok {
		return ec
	}

	start := time.Now()
	ec := NewEpochContext(epoch, v.mode)
	v.caches.Add(epoch, ec)
	v.log.Debugf("light cache for epoch %d generated in %s", epoch, time.Since(start))
	return ec
}

// Eval recomputes the final hash and mix of the nonce
func (v *Verifier) Eval(epoch int, header common.Hash, nonce uint64) mining.Result {
	return v.Context(epoch).Hash(header, nonce)
}
