package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// SharedCallTimeout bounds a memoized call that several callers wait on.
const SharedCallTimeout = time.Minute

// GetAs reads key from c and asserts the value to V.
func GetAs[V any](c *MemoryCache, key any) (V, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	typed, ok := v.(V)
	return typed, ok
}

// Memoize wraps fn so its results are cached in c under prefix plus the
// normalized argument. keyFn picks the part of the argument that identifies
// the result; nil uses the whole argument. A ttl of zero or less uses the
// cache's default TTL.
//
// fn runs outside the cache lock. Concurrent misses for the same key share
// a single call, and errors are returned without being cached. The shared
// call is detached from the caller that started it and bounded by
// SharedCallTimeout; each caller still stops waiting when its own ctx ends.
func Memoize[K, V any](
	c *MemoryCache, prefix string, ttl time.Duration,
	keyFn func(K) any, fn func(context.Context, K) (V, error),
) func(context.Context, K) (V, error) {
	if ttl <= 0 {
		ttl = c.DefaultTTL()
	}

	var group singleflight.Group

	return func(ctx context.Context, arg K) (V, error) {
		var keyArg any = arg
		if keyFn != nil {
			keyArg = keyFn(arg)
		}
		key := prefix + ":" + NormalizeKey(keyArg)

		if v, ok := GetAs[V](c, key); ok {
			return v, nil
		}

		ch := group.DoChan(key, func() (any, error) {
			if v, ok := GetAs[V](c, key); ok {
				return v, nil
			}
			callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SharedCallTimeout)
			defer cancel()

			v, err := fn(callCtx, arg)
			if err != nil {
				return nil, err
			}
			c.SetWithTTL(key, v, ttl)
			return v, nil
		})

		select {
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				var zero V
				return zero, res.Err
			}
			v, _ := res.Val.(V)
			return v, nil
		}
	}
}
