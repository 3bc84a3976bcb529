// internal/app/system/workers/screensweep.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the part of screens.Registry the worker needs.
type Sweeper interface {
	Sweep(idle time.Duration) int
	Len() int
}

// ScreenSweep unmounts screens that console sessions stopped using, so
// their controllers stop polling the API.
type ScreenSweep struct {
	screens   Sweeper
	log       *zap.Logger
	interval  time.Duration
	idleAfter time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewScreenSweep creates the worker. Every interval it closes screens
// idle for longer than idleAfter.
func NewScreenSweep(s Sweeper, logger *zap.Logger, interval, idleAfter time.Duration) *ScreenSweep {
	return &ScreenSweep{
		screens:   s,
		log:       logger,
		interval:  interval,
		idleAfter: idleAfter,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (w *ScreenSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("screen sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_after", w.idleAfter))
}

// Stop signals the worker and waits for it. Safe to call twice.
func (w *ScreenSweep) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("screen sweep worker stopped")
}

func (w *ScreenSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ScreenSweep) sweep() {
	n := w.screens.Sweep(w.idleAfter)
	if n > 0 {
		w.log.Info("closed idle screens",
			zap.Int("count", n),
			zap.Int("still_open", w.screens.Len()))
	}
}
