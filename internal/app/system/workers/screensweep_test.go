package workers

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	idle  atomic.Int64
}

func (s *countingSweeper) Sweep(idle time.Duration) int {
	s.calls.Add(1)
	s.idle.Store(int64(idle))
	return 1
}

func (s *countingSweeper) Len() int { return 0 }

func TestScreenSweepRunsUntilStopped(t *testing.T) {
	s := &countingSweeper{}
	w := NewScreenSweep(s, zap.NewNop(), 5*time.Millisecond, 10*time.Minute)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for s.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("sweep never ran twice")
		}
		time.Sleep(time.Millisecond)
	}
	w.Stop()
	w.Stop()

	after := s.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if s.calls.Load() != after {
		t.Error("sweep ran after Stop")
	}
	if time.Duration(s.idle.Load()) != 10*time.Minute {
		t.Errorf("idle threshold = %v", time.Duration(s.idle.Load()))
	}
}
