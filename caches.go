package packet

import (
	"errors"
	"fmt"
	"sync"
)

// errNotFound is the sentinel returned by [cache.Get] for keys that
// have no cached value yet. The caller is expected to derive the
// value and store it with Set or SetErr.
var errNotFound = errors.New("not found")

// A cache is a concurrency-safe map of K to V, used to memoize the
// schemas and codec functions derived from record types.
//
// A Get that misses leaves a marker behind, so that a re-entrant Get
// for the same key, before the first caller has stored a result,
// reports a recursive type instead of deriving forever.
type cache[K comparable, V any] struct {
	m sync.Map // K → *cacheEntry[V]
}

type cacheEntry[V any] struct {
	val  V
	err  error
	done bool
}

// Get returns the cached value or error for k. If k has never been
// seen before, Get returns [errNotFound].
func (c *cache[K, V]) Get(k K) (V, error) {
	var zero V
	ent, loaded := c.m.LoadOrStore(k, &cacheEntry[V]{})
	if !loaded {
		return zero, errNotFound
	}
	e := ent.(*cacheEntry[V])
	if !e.done {
		return zero, TypeError{fmt.Sprint(k), errors.New("recursive type")}
	}
	return e.val, e.err
}

// Set stores the value for k.
func (c *cache[K, V]) Set(k K, v V) {
	c.m.Store(k, &cacheEntry[V]{val: v, done: true})
}

// SetErr stores err as the result for k. Future Gets of k return
// err.
func (c *cache[K, V]) SetErr(k K, err error) {
	c.m.Store(k, &cacheEntry[V]{err: err, done: true})
}
