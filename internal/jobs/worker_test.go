package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueProcessesThroughPool(t *testing.T) {
	w := NewWorker(2)
	defer w.Shutdown()

	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		w.Enqueue(func(ctx context.Context) error {
			done <- struct{}{}
			return nil
		})
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("queued job never ran")
		}
	}
}

func TestShutdownWaitsForAsyncJobs(t *testing.T) {
	w := NewWorker(1)

	var finished int64
	for i := 0; i < 20; i++ {
		w.EnqueueAsync(func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&finished, 1)
			return nil
		})
	}

	// Shutdown must not return while any async job is still running
	w.Shutdown()
	assert.Equal(t, int64(20), atomic.LoadInt64(&finished))
}
