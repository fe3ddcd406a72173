package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedLoader blocks each load for a key until release(key) is called.
type gatedLoader struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	calls    atomic.Int32
	canceled atomic.Int32
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{gates: map[string]chan struct{}{}}
}

func (g *gatedLoader) gate(key string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[key]
	if !ok {
		ch = make(chan struct{})
		g.gates[key] = ch
	}
	return ch
}

func (g *gatedLoader) release(key string) { close(g.gate(key)) }

func (g *gatedLoader) load(ctx context.Context, key string) (string, error) {
	g.calls.Add(1)
	select {
	case <-g.gate(key):
		return "value-" + key, nil
	case <-ctx.Done():
		g.canceled.Add(1)
		return "", ctx.Err()
	}
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle")
	}
}

func TestLatestLoad(t *testing.T) {
	g := newGatedLoader()
	l := NewLatest(context.Background(), g.load, 0)

	done := l.Load("a")
	snap := l.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, "a", snap.Key)

	g.release("a")
	wait(t, done)

	snap = l.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.Ready)
	assert.NoError(t, snap.Err)
	assert.Equal(t, "value-a", snap.Value)
}

func TestLatestSameKeyIsNotRefetched(t *testing.T) {
	g := newGatedLoader()
	g.release("a")
	l := NewLatest(context.Background(), g.load, 0)

	wait(t, l.Load("a"))
	wait(t, l.Load("a"))

	assert.Equal(t, int32(1), g.calls.Load())
}

func TestLatestSupersededResultIsDiscarded(t *testing.T) {
	g := newGatedLoader()
	l := NewLatest(context.Background(), g.load, 0)

	first := l.Load("a")
	second := l.Load("b")

	// The first load is cancelled when "b" takes over.
	wait(t, first)
	assert.Equal(t, int32(1), g.canceled.Load())

	snap := l.Snapshot()
	assert.Equal(t, "b", snap.Key)
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Value)

	g.release("b")
	wait(t, second)
	assert.Equal(t, "value-b", l.Snapshot().Value)
}

func TestLatestLateResultAfterSwitchIsDropped(t *testing.T) {
	started := make(chan struct{})
	finish := make(chan struct{})
	ignoreCancel := func(ctx context.Context, key string) (string, error) {
		if key == "slow" {
			close(started)
			<-finish
		}
		return "value-" + key, nil
	}
	l := NewLatest(context.Background(), ignoreCancel, 0)

	slow := l.Load("slow")
	<-started
	wait(t, l.Load("fast"))

	close(finish)
	wait(t, slow)

	snap := l.Snapshot()
	assert.Equal(t, "fast", snap.Key)
	assert.Equal(t, "value-fast", snap.Value)
}

func TestLatestReloadAfterError(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	load := func(ctx context.Context, key int) (int, error) {
		if fail.Load() {
			return 0, errors.New("boom")
		}
		return key * 10, nil
	}
	l := NewLatest(context.Background(), load, time.Second)

	wait(t, l.Load(4))
	snap := l.Snapshot()
	require.Error(t, snap.Err)
	assert.True(t, snap.Ready)

	fail.Store(false)
	wait(t, l.Reload())
	snap = l.Snapshot()
	assert.NoError(t, snap.Err)
	assert.Equal(t, 40, snap.Value)
}

func TestLatestLoadRetriesFailedKey(t *testing.T) {
	var calls atomic.Int32
	load := func(ctx context.Context, key int) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("boom")
		}
		return key, nil
	}
	l := NewLatest(context.Background(), load, 0)

	wait(t, l.Load(1))
	wait(t, l.Load(1))

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, l.Snapshot().Value)
}

func TestLatestReloadWithoutKey(t *testing.T) {
	l := NewLatest(context.Background(), func(ctx context.Context, key int) (int, error) { return key, nil }, 0)

	wait(t, l.Reload())

	_, ok := l.Key()
	assert.False(t, ok)
}

func TestLatestTimeout(t *testing.T) {
	g := newGatedLoader()
	l := NewLatest(context.Background(), g.load, 20*time.Millisecond)

	wait(t, l.Load("never"))

	snap := l.Snapshot()
	assert.ErrorIs(t, snap.Err, context.DeadlineExceeded)
}

func TestLatestRootCancel(t *testing.T) {
	g := newGatedLoader()
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLatest(ctx, g.load, 0)

	done := l.Load("a")
	cancel()
	wait(t, done)

	assert.ErrorIs(t, l.Snapshot().Err, context.Canceled)
}
