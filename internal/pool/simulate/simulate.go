package simulate

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
	"go.uber.org/atomic"
)

const (
	DefaultSampleInterval = 200 * time.Millisecond
	meanAlpha             = 0.45
)

// Farm is the part of the farm driven by the client
type Farm interface {
	SetWork(w mining.WorkPackage)
	AccountSolution(index int, outcome mining.SolutionOutcome)
	OnSolutionFound(cb func(s mining.Solution))
	HashRate() float64
}

type Evaluator interface {
	Eval(epoch int, header common.Hash, nonce uint64) mining.Result
}

// Client is a local benchmark pool: it hands out a single random package and
// judges solutions with the local verifier
type Client struct {
	block          int
	difficulty     float64
	sampleInterval time.Duration
	farm           Farm
	verifier       Evaluator
	log            interfaces.ILogger

	workMu   sync.RWMutex
	work     mining.WorkPackage
	maxRate  *atomic.Float64
	meanRate *atomic.Float64
	accepted *atomic.Uint64
	rejected *atomic.Uint64
}

func NewClient(block int, difficulty float64, farm Farm, verifier Evaluator, log interfaces.ILogger) *Client {
	return &Client{
		block:          block,
		difficulty:     difficulty,
		sampleInterval: DefaultSampleInterval,
		farm:           farm,
		verifier:       verifier,
		log:            log,
		work:           mining.NewEmptyWorkPackage(),
		maxRate:        atomic.NewFloat64(0),
		meanRate:       atomic.NewFloat64(0),
		accepted:       atomic.NewUint64(0),
		rejected:       atomic.NewUint64(0),
	}
}

// Run publishes the package and samples the farm hash rate until ctx is done
func (c *Client) Run(ctx context.Context) error {
	work, err := c.newWork()
	if err != nil {
		return err
	}
	c.workMu.Lock()
	c.work = work
	c.workMu.Unlock()

	c.farm.OnSolutionFound(c.Submit)
	c.farm.SetWork(work)
	c.log.Infof("simulating %s, block %d, difficulty %s", work, work.Block, lib.FormatHashes(c.difficulty))

	ticker := time.NewTicker(c.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Infof("simulation results: max %s, mean %s, accepted %d, rejected %d",
				lib.FormatHashes(c.MaxHashrate()), lib.FormatHashes(c.MeanHashrate()), c.accepted.Load(), c.rejected.Load())
			return ctx.Err()
		case <-ticker.C:
			c.sample(c.farm.HashRate())
		}
	}
}

func (c *Client) newWork() (mining.WorkPackage, error) {
	var header common.Hash
	if _, err := rand.Read(header[:]); err != nil {
		return mining.WorkPackage{}, err
	}

	epoch := ethash.EpochOf(c.block)
	return mining.WorkPackage{
		Job:        uuid.NewString(),
		Header:     header,
		Seed:       ethash.SeedHash(epoch),
		Boundary:   mining.TargetFromDifficulty(c.difficulty),
		Epoch:      epoch,
		Block:      c.block,
		Difficulty: c.difficulty,
	}, nil
}

func (c *Client) sample(rate float64) {
	if rate > c.maxRate.Load() {
		c.maxRate.Store(rate)
	}
	c.meanRate.Store(meanAlpha*c.meanRate.Load() + (1-meanAlpha)*rate)
}

// Submit evaluates the solution locally and reports the verdict to the farm
func (c *Client) Submit(s mining.Solution) {
	start := time.Now()
	r := c.verifier.Eval(s.Work.Epoch, s.Work.Header, s.Nonce)
	latency := time.Since(start)

	if mining.MeetsBoundary(r.Value, s.Work.Boundary) {
		c.accepted.Inc()
		c.farm.AccountSolution(s.MinerIndex, mining.Accepted)
		c.log.Infof("solution accepted in %s from device %d", latency.Round(time.Microsecond), s.MinerIndex)
		return
	}
	c.rejected.Inc()
	c.farm.AccountSolution(s.MinerIndex, mining.Rejected)
	c.log.Warnf("solution rejected in %s from device %d", latency.Round(time.Microsecond), s.MinerIndex)
}

func (c *Client) Work() mining.WorkPackage {
	c.workMu.RLock()
	defer c.workMu.RUnlock()
	return c.work
}

func (c *Client) MaxHashrate() float64 {
	return c.maxRate.Load()
}

func (c *Client) MeanHashrate() float64 {
	return c.meanRate.Load()
}

func (c *Client) Accepted() uint64 {
	return c.accepted.Load()
}

func (c *Client) Rejected() uint64 {
	return c.rejected.Load()
}
