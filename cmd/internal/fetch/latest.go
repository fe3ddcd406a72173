// Package fetch keeps the most recent result of a keyed, asynchronous load.
package fetch

import (
	"context"
	"sync"
	"time"
)

// Func loads the value for key. It must return promptly once ctx is done.
type Func[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Result is a point-in-time view of a Latest. Value and Err always belong to Key.
type Result[K comparable, V any] struct {
	Key     K
	Value   V
	Err     error
	Loading bool
	Ready   bool
}

// Latest tracks a single current key and the outcome of loading it. Switching
// to another key cancels the in-flight load, and a load that finishes after
// its key was replaced is dropped.
type Latest[K comparable, V any] struct {
	root    context.Context
	load    Func[K, V]
	timeout time.Duration

	mu     sync.Mutex
	gen    uint64
	hasKey bool
	cur    Result[K, V]
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLatest builds a loader whose fetches run under root. A zero timeout
// leaves fetches bounded only by root and by cancellation.
func NewLatest[K comparable, V any](root context.Context, load Func[K, V], timeout time.Duration) *Latest[K, V] {
	return &Latest[K, V]{root: root, load: load, timeout: timeout}
}

// Load makes key the current key and starts fetching it, unless key is
// already current and either loading or loaded without error. The returned
// channel is closed once that fetch settles or is superseded.
func (l *Latest[K, V]) Load(key K) <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hasKey && l.cur.Key == key && (l.cur.Loading || (l.cur.Ready && l.cur.Err == nil)) {
		return l.done
	}
	return l.startLocked(key)
}

// Reload fetches the current key again. It is a no-op returning a closed
// channel when no key was ever loaded.
func (l *Latest[K, V]) Reload() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.hasKey {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return l.startLocked(l.cur.Key)
}

func (l *Latest[K, V]) Snapshot() Result[K, V] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cur
}

// Key returns the current key and whether one has been set.
func (l *Latest[K, V]) Key() (K, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cur.Key, l.hasKey
}

func (l *Latest[K, V]) startLocked(key K) <-chan struct{} {
	if l.cancel != nil {
		l.cancel()
	}

	l.gen++
	gen := l.gen

	var ctx context.Context
	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(l.root, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(l.root)
	}

	done := make(chan struct{})
	l.hasKey = true
	l.cur = Result[K, V]{Key: key, Loading: true}
	l.cancel = cancel
	l.done = done

	go l.run(ctx, cancel, gen, key, done)
	return done
}

func (l *Latest[K, V]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, key K, done chan struct{}) {
	defer close(done)
	defer cancel()

	value, err := l.load(ctx, key)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	l.cur = Result[K, V]{Key: key, Value: value, Err: err, Ready: true}
	l.cancel = nil
}
