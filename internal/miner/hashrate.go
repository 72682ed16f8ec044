package miner

import (
	"time"
)

// RetrieveHashRate returns the rate computed over the last collection interval, in hashes per second
func (m *Miner) RetrieveHashRate() float64 {
	return m.hashRate.Load()
}

// TriggerHashRateUpdate asks the miner goroutine to publish its rate on the next
// batch. If the previous request was never served the device is not hashing
// and its rate drops to zero
func (m *Miner) TriggerHashRateUpdate() {
	if m.hashRateUpdate.CAS(false, true) {
		return
	}
	m.hashRate.Store(0)
}

// UpdateHashRate accounts increment groups of groupSize hashes and publishes
// the rate when an update was requested. Called from the miner goroutine only
func (m *Miner) UpdateHashRate(groupSize, increment uint64) {
	m.groupCount += groupSize * increment
	if !m.hashRateUpdate.CAS(true, false) {
		return
	}

	now := time.Now()
	us := now.Sub(m.hashTime).Microseconds()
	m.hashTime = now

	rate := 0.0
	if us > 0 {
		rate = float64(m.groupCount) * 1e6 / float64(us)
	}
	m.hashRate.Store(rate)
	m.groupCount = 0
}
