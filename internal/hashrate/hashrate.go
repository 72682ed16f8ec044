package hashrate

import (
	"time"

	"go.uber.org/atomic"
)

const (
	ShortWindow = 1 * time.Minute
	LongWindow  = 10 * time.Minute
)

// Effective estimates the hashrate actually delivered from the difficulty of
// verified solutions. A solution at difficulty D stands for D hashes on average
type Effective struct {
	short     Counter
	long      Counter
	total     *atomic.Float64
	solutions *atomic.Uint64
}

func NewEffective() *Effective {
	return &Effective{
		short:     NewEmaPrimed(ShortWindow, 3),
		long:      NewEma(LongWindow),
		total:     atomic.NewFloat64(0),
		solutions: atomic.NewUint64(0),
	}
}

func (e *Effective) OnSolution(difficulty float64) {
	if difficulty <= 0 {
		return
	}
	e.short.Add(difficulty)
	e.long.Add(difficulty)
	e.total.Add(difficulty)
	e.solutions.Inc()
}

// ShortHashrate returns hashes per second averaged over ShortWindow
func (e *Effective) ShortHashrate() float64 {
	return e.short.ValuePer(time.Second)
}

// LongHashrate returns hashes per second averaged over LongWindow
func (e *Effective) LongHashrate() float64 {
	return e.long.ValuePer(time.Second)
}

func (e *Effective) TotalHashes() float64 {
	return e.total.Load()
}

func (e *Effective) Solutions() uint64 {
	return e.solutions.Load()
}
