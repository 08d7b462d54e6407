package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAddTicker_Fires(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int64
	s.AddTicker("tick", 10*time.Millisecond, func() {
		atomic.AddInt64(&count, 1)
	})

	time.Sleep(60 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt64(&count), int64(1))
}

func TestAddTicker_ReplacesSameName(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var first, second int64
	s.AddTicker("task", 10*time.Millisecond, func() { atomic.AddInt64(&first, 1) })
	s.AddTicker("task", 10*time.Millisecond, func() { atomic.AddInt64(&second, 1) })

	time.Sleep(50 * time.Millisecond)
	got := atomic.LoadInt64(&first)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, got, atomic.LoadInt64(&first), "replaced ticker kept firing")
	assert.Greater(t, atomic.LoadInt64(&second), int64(0))
}

func TestAddDelay_FiresOnce(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int64
	s.AddDelay("once", 10*time.Millisecond, func() { atomic.AddInt64(&count, 1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&count))
}

func TestRemove_StopsTask(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int64
	s.AddTicker("tick", 10*time.Millisecond, func() { atomic.AddInt64(&count, 1) })
	time.Sleep(25 * time.Millisecond)
	s.Remove("tick")
	got := atomic.LoadInt64(&count)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, got, atomic.LoadInt64(&count))
}

func TestTickerPanicRecovered(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int64
	s.AddTicker("panicky", 10*time.Millisecond, func() {
		atomic.AddInt64(&count, 1)
		panic("boom")
	})

	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt64(&count), int64(1), "ticker should survive panics")
}
