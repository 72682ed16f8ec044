package hashrate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withClock(t *testing.T, start time.Time) func(d time.Duration) {
	now := start
	getNow = func() time.Time { return now }
	t.Cleanup(func() { getNow = time.Now })
	return func(d time.Duration) { now = now.Add(d) }
}

func TestEmaDecaysWithTime(t *testing.T) {
	advance := withClock(t, time.Unix(1000, 0))

	c := NewEma(time.Minute)
	c.Add(60)
	require.InDelta(t, 60, c.Value(), 1e-9)

	advance(time.Minute)
	require.InDelta(t, 60*math.Exp(-1), c.Value(), 1e-9)
}

func TestEmaConvergesToRate(t *testing.T) {
	advance := withClock(t, time.Unix(1000, 0))

	c := NewEma(10 * time.Second)
	for i := 0; i < 1000; i++ {
		advance(100 * time.Millisecond)
		c.Add(5)
	}
	// 5 per 100ms is 50 per second
	require.InDelta(t, 50, c.ValuePer(time.Second), 3)
}

func TestEmaPrimedReadsZeroUntilPrimed(t *testing.T) {
	advance := withClock(t, time.Unix(1000, 0))

	c := NewEmaPrimed(time.Minute, 3)
	c.Add(10)
	advance(time.Second)
	c.Add(10)
	require.False(t, c.Primed())
	require.Zero(t, c.Value())

	advance(time.Second)
	c.Add(10)
	require.True(t, c.Primed())
	// 30 over 2s scaled to a minute window
	require.InDelta(t, 15, c.ValuePer(time.Second), 1e-9)
}

func TestEffectiveIgnoresNonPositive(t *testing.T) {
	e := NewEffective()
	e.OnSolution(0)
	e.OnSolution(-1)
	require.Zero(t, e.Solutions())
	require.Zero(t, e.TotalHashes())

	e.OnSolution(1000)
	e.OnSolution(500)
	require.EqualValues(t, 2, e.Solutions())
	require.InDelta(t, 1500, e.TotalHashes(), 1e-9)
}

func TestEffectiveShortHashrate(t *testing.T) {
	advance := withClock(t, time.Unix(1000, 0))

	e := NewEffective()
	for i := 0; i < 120; i++ {
		advance(time.Second)
		e.OnSolution(1e6)
	}
	require.InDelta(t, 1e6, e.ShortHashrate(), 1.5e5)
	require.Greater(t, e.LongHashrate(), 0.0)
}
