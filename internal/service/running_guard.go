package service

import (
	"context"
	"sync"
)

// ExportedPushGuard is an exported alias so _test packages can test the guard.
type ExportedPushGuard = pushGuard

// pushKey names one design on one mirror target.
type pushKey struct {
	targetID string
	designID string
}

// pushGuard lets one push per design and target run at a time. Overlapping
// autosave ticks and manual pushes skip instead of queueing; the same
// design may still go to different targets concurrently.
type pushGuard struct {
	mu      sync.Mutex
	running map[pushKey]struct{}
	wg      sync.WaitGroup
}

// TryLock marks the push of designID to targetID as running. It returns
// false if that push already runs.
func (g *pushGuard) TryLock(targetID, designID string) bool {
	k := pushKey{targetID, designID}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[pushKey]struct{})
	}
	if _, ok := g.running[k]; ok {
		return false
	}
	g.running[k] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock releases a push. Must follow a successful TryLock.
func (g *pushGuard) Unlock(targetID, designID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, pushKey{targetID, designID})
	g.wg.Done()
}

// WaitAll blocks until running pushes complete or ctx is cancelled.
func (g *pushGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
