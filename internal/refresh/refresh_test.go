package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefresher_DedupsInFlight(t *testing.T) {
	release := make(chan struct{})
	var runs atomic.Int32
	r := New(4, 1, time.Second, func(ctx context.Context, j Job) {
		runs.Add(1)
		<-release
	})
	defer r.Close()

	assert.True(t, r.Enqueue(Job{Key: "feed-a"}))
	assert.False(t, r.Enqueue(Job{Key: "feed-a"}))
	close(release)

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return r.Enqueue(Job{Key: "feed-a"}) }, time.Second, 5*time.Millisecond)
}

func TestRefresher_PassesTimeout(t *testing.T) {
	got := make(chan time.Time, 1)
	r := New(1, 1, 50*time.Millisecond, func(ctx context.Context, j Job) {
		dl, _ := ctx.Deadline()
		got <- dl
	})
	defer r.Close()

	start := time.Now()
	r.Enqueue(Job{Key: "x"})
	select {
	case dl := <-got:
		assert.WithinDuration(t, start.Add(50*time.Millisecond), dl, 40*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("job not run")
	}
}
