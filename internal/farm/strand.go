package farm

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

// Strand runs posted tasks one at a time, in posting order, on a single goroutine
type Strand struct {
	tasks  *deque.Deque[func()]
	mutex  sync.Mutex
	signal chan struct{}
}

func NewStrand() *Strand {
	return &Strand{
		tasks:  deque.New[func()](),
		signal: make(chan struct{}, 1),
	}
}

// Post enqueues fn without blocking
func (s *Strand) Post(fn func()) {
	s.mutex.Lock()
	s.tasks.PushBack(fn)
	s.mutex.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Strand) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.tasks.Len()
}

// Run executes tasks until ctx is done. Tasks left in the queue are dropped
func (s *Strand) Run(ctx context.Context) error {
	for {
		fn, ok := s.next()
		if ok {
			fn()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.signal:
		}
	}
}

func (s *Strand) next() (func(), bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tasks.Len() == 0 {
		return nil, false
	}
	return s.tasks.PopFront(), true
}
