package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"
)

// DefaultKey derives a cache key from the FNV-1a hash of a value's JSON
// encoding. Values that cannot be encoded fall back to their Go
// representation; the key is stable for equal inputs either way.
func DefaultKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("memo:%x", h.Sum64())
}

// Memoize wraps a pure function so repeated calls with an equal key return
// the cached result without invoking fn. keyFn may be nil, in which case the
// argument's structural hash keys the entry.
func Memoize[A, R any](c *Cache, fn func(A) R, keyFn func(A) string, ttl time.Duration) func(A) R {
	if keyFn == nil {
		keyFn = func(a A) string { return DefaultKey(a) }
	}
	return func(a A) R {
		key := keyFn(a)
		if v, ok := c.Get(key); ok {
			return v.(R)
		}
		r := fn(a)
		c.Set(key, r, ttl)
		return r
	}
}

// MemoizeCtx is the variant for suspending functions. Only successful
// results are cached; errors always re-invoke fn.
func MemoizeCtx[A, R any](c *Cache, fn func(context.Context, A) (R, error), keyFn func(A) string, ttl time.Duration) func(context.Context, A) (R, error) {
	if keyFn == nil {
		keyFn = func(a A) string { return DefaultKey(a) }
	}
	return func(ctx context.Context, a A) (R, error) {
		key := keyFn(a)
		if v, ok := c.Get(key); ok {
			return v.(R), nil
		}
		r, err := fn(ctx, a)
		if err != nil {
			var zero R
			return zero, err
		}
		c.Set(key, r, ttl)
		return r, nil
	}
}
