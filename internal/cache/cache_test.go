package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyCanonicalization(t *testing.T) {
	assert.Equal(t, Key("documents"), NewKey("documents"))
	assert.Equal(t, Key("documents/space=2"), NewKey("documents", "space=2"))

	// Parameter order must not matter.
	a := NewKey("usage", "limit=20", "offset=40")
	b := NewKey("usage", "offset=40", "limit=20")
	assert.Equal(t, a, b)
}

func TestKeyResource(t *testing.T) {
	assert.Equal(t, "documents", NewKey("documents", "space=2").Resource())
	assert.Equal(t, "spaces", NewKey("spaces").Resource())
}

func TestResolveFreshHitSkipsFetch(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "v1", nil
	}

	key := NewKey("spaces")
	v, err := c.Resolve(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	v, err = c.Resolve(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, int32(1), calls.Load(), "fresh hit must not refetch")
}

func TestResolveStaleServesOldValueWhileRevalidating(t *testing.T) {
	c := New(10 * time.Millisecond)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n == 1 {
			return "old", nil
		}
		return "new", nil
	}

	key := NewKey("stats")
	_, err := c.Resolve(context.Background(), key, fetch)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	v, err := c.Resolve(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "old", v, "stale read returns the retained value immediately")

	assert.Eventually(t, func() bool {
		v, ok := c.Peek(key)
		return ok && v == "new"
	}, time.Second, 5*time.Millisecond, "background revalidation should land")
}

func TestInvalidationClosure(t *testing.T) {
	c := New(time.Minute)

	// Space list whose key count increments after the mutation, as when
	// creating an API key bumps the space's embedded key count.
	keyCount := atomic.Int32{}
	keyCount.Store(1)
	var fetches atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		fetches.Add(1)
		return int(keyCount.Load()), nil
	}

	key := NewKey("spaces")
	var mu sync.Mutex
	var seen []int
	cancel := c.Subscribe(key, fetch, func(v any) {
		mu.Lock()
		seen = append(seen, v.(int))
		mu.Unlock()
	})
	defer cancel()

	require.Eventually(t, func() bool {
		v, ok := c.Peek(key)
		return ok && v == 1
	}, time.Second, 5*time.Millisecond)
	initialFetches := fetches.Load()

	// Mutation succeeds server-side, then declares its invalidations.
	keyCount.Store(2)
	c.Invalidate("api-keys", "spaces")

	require.Eventually(t, func() bool {
		v, ok := c.Peek(key)
		return ok && v == 2
	}, time.Second, 5*time.Millisecond, "subscribed view must observe the fresh value")

	assert.Equal(t, initialFetches+1, fetches.Load(),
		"exactly one invalidation-triggered refetch, no extra fetch calls")

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen, 2)
}

func TestInvalidateWithoutSubscribersDefersRefetch(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		return int(calls.Add(1)), nil
	}

	key := NewKey("documents")
	_, err := c.Resolve(context.Background(), key, fetch)
	require.NoError(t, err)

	c.Invalidate("documents")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "unmounted keys refetch on next read, not eagerly")

	// Next read revalidates: stale value served, fresh one lands behind it.
	v, err := c.Resolve(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Eventually(t, func() bool {
		v, ok := c.Peek(key)
		return ok && v == 2
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidateOnlyTouchesNamedResource(t *testing.T) {
	c := New(time.Minute)
	var docFetches, spaceFetches atomic.Int32

	docKey := NewKey("documents", "space=1")
	spaceKey := NewKey("spaces")
	_, err := c.Resolve(context.Background(), docKey, func(ctx context.Context) (any, error) {
		docFetches.Add(1)
		return "docs", nil
	})
	require.NoError(t, err)
	_, err = c.Resolve(context.Background(), spaceKey, func(ctx context.Context) (any, error) {
		spaceFetches.Add(1)
		return "spaces", nil
	})
	require.NoError(t, err)

	c.Invalidate("documents")

	// The spaces entry must still be fresh: no revalidation on read.
	_, err = c.Resolve(context.Background(), spaceKey, func(ctx context.Context) (any, error) {
		spaceFetches.Add(1)
		return "spaces", nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), spaceFetches.Load())
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	c := New(time.Nanosecond) // everything stale immediately
	key := NewKey("documents", "space=1")

	// Seed a value.
	_, err := c.Resolve(context.Background(), key, func(ctx context.Context) (any, error) {
		return "seed", nil
	})
	require.NoError(t, err)

	// A slow refetch starts (stale hit), then an invalidation supersedes
	// it and lands "fresh". The slow response must not clobber it.
	release := make(chan struct{})
	started := make(chan struct{})
	slow := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return "slow-stale", nil
	}
	v, err := c.Resolve(context.Background(), key, slow)
	require.NoError(t, err)
	assert.Equal(t, "seed", v)
	<-started

	c.Invalidate("documents")
	// Manually land a newer value, as the invalidation-triggered refetch
	// would for a subscribed key.
	cancel := c.Subscribe(key, func(ctx context.Context) (any, error) {
		return "fresh", nil
	}, func(any) {})
	defer cancel()
	require.Eventually(t, func() bool {
		val, ok := c.Peek(key)
		return ok && val == "fresh"
	}, time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(20 * time.Millisecond)

	val, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, "fresh", val, "late response for a superseded fetch must be dropped")
}

func TestSubscribeRefetchesStaleEntry(t *testing.T) {
	c := New(time.Nanosecond)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		return int(calls.Add(1)), nil
	}

	key := NewKey("api-keys")
	_, err := c.Resolve(context.Background(), key, fetch)
	require.NoError(t, err)

	got := make(chan any, 1)
	cancel := c.Subscribe(key, fetch, func(v any) { got <- v })
	defer cancel()

	select {
	case v := <-got:
		assert.Equal(t, 2, v)
	case <-time.After(time.Second):
		t.Fatal("subscription to a stale key should trigger a refetch")
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	c := New(time.Minute)
	key := NewKey("spaces")
	fetch := func(ctx context.Context) (any, error) { return "v", nil }

	var notified atomic.Int32
	cancel := c.Subscribe(key, fetch, func(any) { notified.Add(1) })
	require.Eventually(t, func() bool { return notified.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	c.Invalidate("spaces")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), notified.Load(), "no notifications after unsubscribe")
}

func TestPoll(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		return int(calls.Add(1)), nil
	}

	key := NewKey("usage", "page=0")
	stop := c.Poll(key, 10*time.Millisecond, fetch)

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	stop()

	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), settled+1, "polling must stop after stop()")
}

func TestConcurrentInvalidationsAllRun(t *testing.T) {
	c := New(time.Minute)
	var fetches atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		return int(fetches.Add(1)), nil
	}

	key := NewKey("documents")
	cancel := c.Subscribe(key, fetch, func(any) {})
	defer cancel()
	require.Eventually(t, func() bool { return fetches.Load() >= 1 }, time.Second, 5*time.Millisecond)

	before := fetches.Load()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Invalidate("documents")
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return fetches.Load() >= before+1
	}, time.Second, 5*time.Millisecond, "every invalidation triggers a refetch; none are lost")
}
