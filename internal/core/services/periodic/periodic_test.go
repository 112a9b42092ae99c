package periodic

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopBeforeStart(t *testing.T) {
	svc := NewService()
	// Must not panic or block.
	svc.Stop()
	svc.Stop()
}

func TestTaskFiresOnInterval(t *testing.T) {
	svc := NewService()

	var runs atomic.Int64
	svc.Register(Task{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	svc.Start(context.Background())
	defer svc.Stop()

	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, time.Millisecond)
}

func TestStopWaitsForInFlightCallable(t *testing.T) {
	svc := NewService()

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var finished atomic.Bool

	svc.Register(Task{
		Name:     "slow",
		Interval: time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
			finished.Store(true)
			return nil
		},
	})

	svc.Start(context.Background())
	<-entered

	stopDone := make(chan struct{})
	go func() {
		svc.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.Fatal("Stop returned while a callable was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopDone:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned after callable finished")
	}
	assert.True(t, finished.Load())
}

func TestConcurrentStopsAllWaitForCallable(t *testing.T) {
	svc := NewService()

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var finished atomic.Bool

	svc.Register(Task{
		Name:     "slow",
		Interval: time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
			finished.Store(true)
			return nil
		},
	})

	svc.Start(context.Background())
	<-entered

	// Two racing Stop calls: neither may return before the in-flight
	// callable has finished.
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			svc.Stop()
			done <- struct{}{}
		}()
	}

	select {
	case <-done:
		t.Fatal("a Stop returned while a callable was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	for i := 0; i < 2; i++ {
		select {
		case <-done:
			assert.True(t, finished.Load(), "Stop returned before the callable finished")
		case <-time.After(time.Second):
			t.Fatal("Stop never returned after callable finished")
		}
	}
}

func TestNoRunsAfterStop(t *testing.T) {
	svc := NewService()

	var runs atomic.Int64
	svc.Register(Task{
		Name:     "counter",
		Interval: 2 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	svc.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)

	svc.Stop()
	after := runs.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no callable may execute after Stop returns")
}

func TestMultipleTasks(t *testing.T) {
	svc := NewService()

	var a, b atomic.Int64
	svc.Register(Task{Name: "a", Interval: 3 * time.Millisecond, Run: func(ctx context.Context) error {
		a.Add(1)
		return nil
	}})
	svc.Register(Task{Name: "b", Interval: 3 * time.Millisecond, Run: func(ctx context.Context) error {
		b.Add(1)
		return nil
	}})

	svc.Start(context.Background())
	defer svc.Stop()

	require.Eventually(t, func() bool {
		return a.Load() >= 1 && b.Load() >= 1
	}, time.Second, time.Millisecond)
}

func TestContextCancelHaltsLoops(t *testing.T) {
	svc := NewService()

	var runs atomic.Int64
	svc.Register(Task{Name: "counter", Interval: 2 * time.Millisecond, Run: func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)

	cancel()
	// Stop still joins cleanly after the context already ended the loops.
	svc.Stop()
}

func TestTaskErrorDoesNotStopLoop(t *testing.T) {
	svc := NewService()

	var runs atomic.Int64
	svc.Register(Task{Name: "flaky", Interval: 2 * time.Millisecond, Run: func(ctx context.Context) error {
		runs.Add(1)
		return assert.AnError
	}})

	svc.Start(context.Background())
	defer svc.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
}
