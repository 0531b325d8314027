package terminology

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a search replaced by a newer one
// for the same input.
var ErrSuperseded = errors.New("search superseded by a newer request")

// SearchGuard keeps at most one in-flight search per key. Starting a search
// for a key cancels the previous one, so a slow stale answer never lands
// after a newer keystroke.
type SearchGuard struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflightSearch
}

type inflightSearch struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// NewSearchGuard creates an empty guard.
func NewSearchGuard() *SearchGuard {
	return &SearchGuard{inflight: make(map[string]inflightSearch)}
}

// Begin derives a search context for key and cancels any earlier search
// still running for it with ErrSuperseded. The returned done func releases
// the slot and must be called once the search finishes.
func (g *SearchGuard) Begin(ctx context.Context, key string) (context.Context, func()) {
	searchCtx, cancel := context.WithCancelCause(ctx)

	g.mu.Lock()
	if prev, ok := g.inflight[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	g.seq++
	id := g.seq
	g.inflight[key] = inflightSearch{id: id, cancel: cancel}
	g.mu.Unlock()

	done := func() {
		g.mu.Lock()
		if cur, ok := g.inflight[key]; ok && cur.id == id {
			delete(g.inflight, key)
		}
		g.mu.Unlock()
		cancel(context.Canceled)
	}
	return searchCtx, done
}

// Len returns the number of searches currently tracked.
func (g *SearchGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

// Superseded reports whether ctx was cancelled because a newer search for
// the same key started.
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}
