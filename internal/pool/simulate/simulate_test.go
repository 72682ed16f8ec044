package simulate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
)

type farmMock struct {
	mu       sync.Mutex
	work     mining.WorkPackage
	outcomes map[mining.SolutionOutcome]int
	onFound  func(s mining.Solution)
	rates    []float64
}

func newFarmMock(rates ...float64) *farmMock {
	return &farmMock{outcomes: make(map[mining.SolutionOutcome]int), rates: rates}
}

func (f *farmMock) SetWork(w mining.WorkPackage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.work = w
}

func (f *farmMock) AccountSolution(index int, outcome mining.SolutionOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[outcome]++
}

func (f *farmMock) OnSolutionFound(cb func(s mining.Solution)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFound = cb
}

func (f *farmMock) HashRate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rates) == 0 {
		return 0
	}
	r := f.rates[0]
	if len(f.rates) > 1 {
		f.rates = f.rates[1:]
	}
	return r
}

func (f *farmMock) published() mining.WorkPackage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.work
}

func TestClientPublishesWork(t *testing.T) {
	farm := newFarmMock(100)
	c := NewClient(45000, 1, farm, ethash.NewVerifier(ethash.ModeTest, 1, lib.NewTestLogger()), lib.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- c.Run(ctx) }()

	err := lib.Poll(context.Background(), 2*time.Second, func() error {
		if farm.published().IsEmpty() {
			return errors.New("no work published")
		}
		return nil
	}, time.Millisecond)
	require.NoError(t, err)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	w := farm.published()
	require.Equal(t, 1, w.Epoch)
	require.Equal(t, 45000, w.Block)
	require.Equal(t, ethash.SeedHash(1), w.Seed)
	require.Equal(t, mining.TargetFromDifficulty(1), w.Boundary)
	require.NotEmpty(t, w.Job)
	require.Equal(t, w, c.Work())
}

func TestClientJudgesSolutions(t *testing.T) {
	farm := newFarmMock()
	c := NewClient(0, 1, farm, ethash.NewVerifier(ethash.ModeTest, 1, lib.NewTestLogger()), lib.NewTestLogger())

	work := mining.WorkPackage{Header: common.HexToHash("0x01"), Boundary: mining.TargetFromDifficulty(1)}
	c.Submit(mining.Solution{Nonce: 1, Work: work})

	work.Boundary = common.Hash{}
	c.Submit(mining.Solution{Nonce: 1, Work: work})

	require.EqualValues(t, 1, c.Accepted())
	require.EqualValues(t, 1, c.Rejected())
	require.Equal(t, 1, farm.outcomes[mining.Accepted])
	require.Equal(t, 1, farm.outcomes[mining.Rejected])
}

func TestClientHashrateStats(t *testing.T) {
	c := NewClient(0, 1, newFarmMock(), nil, lib.NewTestLogger())

	c.sample(100)
	c.sample(300)
	c.sample(200)

	require.Equal(t, 300.0, c.MaxHashrate())
	// 0.45 weighted mean over 100, 300, 200
	mean := (1 - meanAlpha) * 100
	mean = meanAlpha*mean + (1-meanAlpha)*300
	mean = meanAlpha*mean + (1-meanAlpha)*200
	require.InDelta(t, mean, c.MeanHashrate(), 1e-9)
}
