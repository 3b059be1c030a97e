package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowRefills(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(2, 2*time.Second)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.Equal(t, time.Second, l.RetryAfter())
}

func TestZeroLimitDeniesAll(t *testing.T) {
	l := New(0, time.Second)
	assert.False(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestSweep(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(1, time.Second)
	l.now = func() time.Time { return now }
	l.Allow("old")
	now = now.Add(5 * time.Second)
	l.Allow("new")

	l.sweep()
	assert.Equal(t, 1, l.Len())
}

func TestRunStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(1, time.Second).Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
