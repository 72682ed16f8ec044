package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
)

var (
	ErrKilled = errors.New("worker killed")
	ErrPanic  = errors.New("worker panicked")
)

type State int32

const (
	Starting State = iota
	Started
	Stopping
	Stopped
	Killing
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Started:
		return "started"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Killing:
		return "killing"
	}
	return "unknown"
}

// WorkLoop is the body of a worker. It must return once ctx is cancelled
type WorkLoop func(ctx context.Context) error

// Worker runs a WorkLoop on a dedicated goroutine that can be started and
// stopped repeatedly and killed once
type Worker struct {
	name        string
	loop        WorkLoop
	exitOnError bool
	onFatal     func(err error)
	log         interfaces.ILogger

	opMu    sync.Mutex // serializes Start, Stop and Kill
	mu      sync.Mutex
	cond    *sync.Cond
	state   State
	spawned bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWorker creates a worker in the Stopped state. onFatal is called when the
// loop fails and exitOnError is set
func NewWorker(name string, loop WorkLoop, exitOnError bool, onFatal func(err error), log interfaces.ILogger) *Worker {
	w := &Worker{
		name:        name,
		loop:        loop,
		exitOnError: exitOnError,
		onFatal:     onFatal,
		log:         log,
		state:       Stopped,
		done:        make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ShouldStop reports whether the loop has been asked to return
func (w *Worker) ShouldStop() bool {
	return w.State() != Started
}

// Start launches the loop and blocks until it is running
func (w *Worker) Start() error {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case Killing:
		return ErrKilled
	case Started, Starting:
		return nil
	case Stopping:
		for w.state == Stopping {
			w.cond.Wait()
		}
	}

	w.state = Starting
	if !w.spawned {
		w.spawned = true
		go w.run()
	} else {
		w.cond.Broadcast()
	}

	for w.state == Starting {
		w.cond.Wait()
	}
	return nil
}

// TriggerStop asks the loop to return without waiting for it
func (w *Worker) TriggerStop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Started {
		return
	}
	w.state = Stopping
	if w.cancel != nil {
		w.cancel()
	}
}

// Stop asks the loop to return and waits until it did
func (w *Worker) Stop() {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	w.TriggerStop()

	w.mu.Lock()
	defer w.mu.Unlock()
	for w.state == Stopping {
		w.cond.Wait()
	}
}

// Kill stops the loop and terminates the goroutine. It is safe to call twice
func (w *Worker) Kill() {
	w.KillWithin(0)
}

// KillWithin is Kill bounded by timeout, zero waits forever. It reports false
// when the loop did not return in time, the goroutine is then abandoned
func (w *Worker) KillWithin(timeout time.Duration) bool {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	w.mu.Lock()
	if w.state != Killing {
		w.state = Killing
		if w.cancel != nil {
			w.cancel()
		}
		if !w.spawned {
			close(w.done)
		}
		w.cond.Broadcast()
	}
	w.mu.Unlock()

	if timeout <= 0 {
		<-w.done
		return true
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-w.done:
		return true
	case <-t.C:
		return false
	}
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for w.state == Stopped {
			w.cond.Wait()
		}
		if w.state == Killing {
			w.mu.Unlock()
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		w.cancel = cancel
		w.state = Started
		w.cond.Broadcast()
		w.mu.Unlock()

		err := w.safeLoop(ctx)
		cancel()

		w.mu.Lock()
		w.cancel = nil
		if w.state != Killing {
			w.state = Stopped
		}
		w.cond.Broadcast()
		w.mu.Unlock()

		w.handleError(err)
	}
}

func (w *Worker) safeLoop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = lib.WrapError(ErrPanic, fmt.Errorf("%v", r))
		}
	}()
	return w.loop(ctx)
}

func (w *Worker) handleError(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	w.log.Errorf("exception in %s work loop: %s", w.name, err)
	if w.exitOnError && w.onFatal != nil {
		w.log.Errorf("terminating due to exit on error")
		w.onFatal(err)
	}
}
