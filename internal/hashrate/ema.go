package hashrate

import (
	"math"
	"sync"
	"time"
)

var getNow = time.Now

// Counter is an exponentially decaying accumulator of observed values
type Counter interface {
	Add(v float64)
	Value() float64
	ValuePer(interval time.Duration) float64
}

type ema struct {
	avgInterval time.Duration
	lastValue   float64
	lastTime    time.Time
	lk          sync.RWMutex
}

// NewEma creates an EMA counter that averages values over avgInterval
func NewEma(avgInterval time.Duration) *ema {
	return &ema{avgInterval: avgInterval}
}

func (c *ema) Value() float64 {
	c.lk.RLock()
	defer c.lk.RUnlock()
	return decay(c.lastValue, getNow().Sub(c.lastTime), c.avgInterval)
}

// ValuePer returns the current value normalized to the given interval
func (c *ema) ValuePer(interval time.Duration) float64 {
	return c.Value() * float64(interval) / float64(c.avgInterval)
}

func (c *ema) Add(v float64) {
	c.lk.Lock()
	defer c.lk.Unlock()
	now := getNow()
	c.lastValue = decay(c.lastValue, now.Sub(c.lastTime), c.avgInterval) + v
	c.lastTime = now
}

func decay(value float64, elapsed time.Duration, avgInterval time.Duration) float64 {
	if value == 0 {
		return 0
	}
	return value * math.Exp(-float64(elapsed)/float64(avgInterval))
}
