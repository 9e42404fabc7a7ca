package cache

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

func TestGetAs(t *testing.T) {
	c := NewMemoryCache("test", time.Hour, 10)
	c.Set("names", []string{"Canada", "France"})

	names, ok := GetAs[[]string](c, "names")
	require.True(t, ok)
	assert.Equal(t, []string{"Canada", "France"}, names)

	_, ok = GetAs[int](c, "names")
	assert.False(t, ok, "wrong type is reported as a miss")

	_, ok = GetAs[[]string](c, "missing")
	assert.False(t, ok)
}

func TestMemoize_CachesResults(t *testing.T) {
	c := NewMemoryCache("test", time.Hour, 10, WithClock(newFakeClock().Now))
	var calls atomic.Int32

	double := Memoize(c, "double", time.Minute, nil, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n * 2, nil
	})

	for i := 0; i < 3; i++ {
		v, err := double(context.Background(), 21)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, int32(1), calls.Load())

	v, err := double(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, int32(2), calls.Load())

	assert.ElementsMatch(t, []string{"double:21", "double:5"}, c.Keys())
	assert.Equal(t, 60, c.TTL("double:21"))
}

func TestMemoize_KeyFunc(t *testing.T) {
	type query struct {
		Country string
		TraceID string
	}

	c := NewMemoryCache("test", time.Hour, 10, WithClock(newFakeClock().Now))
	var calls atomic.Int32

	lookup := Memoize(c, "country", 0,
		func(q query) any { return q.Country },
		func(_ context.Context, q query) (string, error) {
			calls.Add(1)
			return "found " + q.Country, nil
		})

	_, _ = lookup(context.Background(), query{Country: "Japan", TraceID: "1"})
	v, _ := lookup(context.Background(), query{Country: "Japan", TraceID: "2"})

	assert.Equal(t, "found Japan", v)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 3600, c.TTL("country:Japan"), "non-positive ttl uses the cache default")
}

func TestMemoize_ErrorsAreNotCached(t *testing.T) {
	c := NewMemoryCache("test", time.Hour, 10)
	errUpstream := errors.New("upstream 503")
	var calls atomic.Int32

	fetch := Memoize(c, "fetch", time.Minute, nil, func(_ context.Context, key string) (string, error) {
		if calls.Add(1) == 1 {
			return "", errUpstream
		}
		return "ok", nil
	})

	_, err := fetch(context.Background(), "k")
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, 0, c.Size())

	v, err := fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoize_CollapsesConcurrentMisses(t *testing.T) {
	c := NewMemoryCache("test", time.Hour, 10)
	var calls atomic.Int32
	release := make(chan struct{})

	slow := Memoize(c, "slow", time.Minute, nil, func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		<-release
		return "value-" + key, nil
	})

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := slow(context.Background(), "k")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "value-k", v)
	}
}

func TestMemoize_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	c := NewMemoryCache("test", time.Hour, 10)
	started := make(chan struct{})
	release := make(chan struct{})
	var callErr atomic.Value

	slow := Memoize(c, "slow", time.Minute, nil, func(ctx context.Context, key string) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			callErr.Store(err)
			return "", err
		}
		return "value-" + key, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := slow(ctx, "k")
		first <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		v, err := slow(context.Background(), "k")
		assert.NoError(t, err)
		second <- v
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	assert.Equal(t, "value-k", <-second)
	assert.Nil(t, callErr.Load(), "the shared call keeps running after its starter cancels")
	assert.True(t, c.Exists("slow:k"))
}

func TestMemoize_FunctionRunsOutsideLock(t *testing.T) {
	c := NewMemoryCache("test", time.Hour, 10)

	reentrant := Memoize(c, "outer", time.Minute, nil, func(_ context.Context, key string) (int, error) {
		// would deadlock if the cache lock were held
		c.Set("inner", 1)
		return c.Size(), nil
	})

	done := make(chan struct{})
	go func() {
		_, _ = reentrant(context.Background(), "k")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("memoized function blocked on the cache lock")
	}
}
