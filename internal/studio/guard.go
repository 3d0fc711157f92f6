package studio

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrBusy = errors.New("another request is still in flight")

// Guard admits one generate or edit request at a time. The render and patch
// engines are not reentrant, so callers hold the guard for the whole request.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire takes the guard without blocking. release is idempotent.
func (g *Guard) TryAcquire() (release func(), ok bool) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { g.busy.Store(false) }) }, true
}

func (g *Guard) Busy() bool { return g.busy.Load() }
