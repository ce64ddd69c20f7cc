package exchange

import "sync/atomic"

// reentrancyGuard is the single concurrency primitive of the exchange. Every
// state-changing operation acquires it on entry; a nested invocation while it
// is held fails immediately with tecREENTRANT instead of executing.
//
// The guard is a flag, not a lock: it must fail a nested acquisition on the
// same call chain rather than deadlock on it, which rules out a mutex.
type reentrancyGuard struct {
	held atomic.Bool
}

// acquire attempts to take the guard. On success it returns a release
// function and true; the release must run on every exit path, so callers
// defer it immediately. On failure the guard is already held and the
// operation must abort with tecREENTRANT.
func (g *reentrancyGuard) acquire() (release func(), ok bool) {
	if !g.held.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { g.held.Store(false) }, true
}
