package miner

import (
	"strings"
	"sync"
)

type PauseReason uint8

const (
	PauseDueToOverHeating PauseReason = iota
	PauseDueToAPIRequest
	PauseDueToFarmPaused
	PauseDueToInsufficientMemory
	PauseDueToInitEpochError
	pauseReasonCount
)

func (r PauseReason) String() string {
	switch r {
	case PauseDueToOverHeating:
		return "Overheating"
	case PauseDueToAPIRequest:
		return "Api request"
	case PauseDueToFarmPaused:
		return "Farm suspended"
	case PauseDueToInsufficientMemory:
		return "Insufficient GPU memory"
	case PauseDueToInitEpochError:
		return "Epoch initialization error"
	}
	return "Unknown"
}

// PauseFlags is a set of pause reasons
type PauseFlags uint8

func (f PauseFlags) With(r PauseReason) PauseFlags {
	return f | 1<<r
}

func (f PauseFlags) Without(r PauseReason) PauseFlags {
	return f &^ (1 << r)
}

func (f PauseFlags) Test(r PauseReason) bool {
	return f&(1<<r) != 0
}

func (f PauseFlags) Any() bool {
	return f != 0
}

// String joins the active reasons with "; "
func (f PauseFlags) String() string {
	var reasons []string
	for r := PauseReason(0); r < pauseReasonCount; r++ {
		if f.Test(r) {
			reasons = append(reasons, r.String())
		}
	}
	return strings.Join(reasons, "; ")
}

// PauseState is a PauseFlags guarded by its own mutex
type PauseState struct {
	mu    sync.Mutex
	flags PauseFlags
}

func (s *PauseState) Set(r PauseReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags = s.flags.With(r)
}

// Clear removes only r, other reasons stay in effect
func (s *PauseState) Clear(r PauseReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags = s.flags.Without(r)
}

func (s *PauseState) Test(r PauseReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.Test(r)
}

func (s *PauseState) Any() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.Any()
}

func (s *PauseState) Flags() PauseFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

func (s *PauseState) String() string {
	return s.Flags().String()
}

// Do runs fn while holding the state lock
func (s *PauseState) Do(fn func(flags *PauseFlags)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.flags)
}
