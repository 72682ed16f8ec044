package farm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStrandRunsInPostingOrder(t *testing.T) {
	s := NewStrand()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		got  []int
		wg   sync.WaitGroup
		size = 100
	)
	wg.Add(size)
	for i := 0; i < size; i++ {
		i := i
		s.Post(func() {
			got = append(got, i)
			wg.Done()
		})
	}

	go func() { _ = s.Run(ctx) }()
	wg.Wait()

	for i := 0; i < size; i++ {
		require.Equal(t, i, got[i])
	}
}

func TestStrandNeverOverlaps(t *testing.T) {
	s := NewStrand()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
		wg       sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(10)
		go func() {
			for j := 0; j < 10; j++ {
				s.Post(func() {
					mu.Lock()
					inFlight++
					if inFlight > maxSeen {
						maxSeen = inFlight
					}
					mu.Unlock()
					time.Sleep(100 * time.Microsecond)
					mu.Lock()
					inFlight--
					mu.Unlock()
					wg.Done()
				})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, maxSeen)
}

func TestStrandStopsOnCancel(t *testing.T) {
	s := NewStrand()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("strand did not stop")
	}
}
