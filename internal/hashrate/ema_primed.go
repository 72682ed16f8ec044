package hashrate

import (
	"sync"
	"time"
)

type emaPrimed struct {
	avgInterval time.Duration
	lastValue   float64
	lastTime    time.Time
	startedAt   time.Time
	lk          sync.RWMutex

	initSum       float64
	primedObsLeft int
}

// NewEmaPrimed creates an EMA counter with the given avgInterval to be primed
// with arithmetic average of obsCount first observations. Until primed the counter reads zero
func NewEmaPrimed(avgInterval time.Duration, obsCount int) *emaPrimed {
	return &emaPrimed{
		avgInterval:   avgInterval,
		primedObsLeft: obsCount,
	}
}

func (c *emaPrimed) Value() float64 {
	c.lk.RLock()
	defer c.lk.RUnlock()
	return decay(c.lastValue, getNow().Sub(c.lastTime), c.avgInterval)
}

func (c *emaPrimed) ValuePer(interval time.Duration) float64 {
	return c.Value() * float64(interval) / float64(c.avgInterval)
}

// Primed reports whether enough observations were collected
func (c *emaPrimed) Primed() bool {
	c.lk.RLock()
	defer c.lk.RUnlock()
	return c.primedObsLeft == 0
}

func (c *emaPrimed) Add(v float64) {
	c.lk.Lock()
	defer c.lk.Unlock()

	now := getNow()
	if c.startedAt.IsZero() {
		c.startedAt = now
	}

	if c.primedObsLeft > 0 {
		c.primedObsLeft--
		c.initSum += v
		if c.primedObsLeft > 0 {
			return
		}
		elapsed := now.Sub(c.startedAt)
		if elapsed <= 0 {
			elapsed = c.avgInterval
		}
		c.lastValue = c.initSum * float64(c.avgInterval) / float64(elapsed)
		c.lastTime = now
		return
	}

	c.lastValue = decay(c.lastValue, now.Sub(c.lastTime), c.avgInterval) + v
	c.lastTime = now
}
