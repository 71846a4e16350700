package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoCache adapts a ristretto cache to Cache. Every entry costs 1,
// so size bounds the number of entries.
type RistrettoCache[T any] struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func NewRistrettoCache[T any](size int, ttl time.Duration) (*RistrettoCache[T], error) {
	if size <= 0 {
		size = 1
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(size) * 10, // number of keys to track frequency of
		MaxCost:            int64(size),
		BufferItems:        64, // number of keys per Get buffer
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoCache[T]{c: c, ttl: ttl}, nil
}

func (r *RistrettoCache[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := r.c.Get(key)
	if !ok {
		return zero, false
	}
	data, ok := v.(T)
	if !ok {
		return zero, false
	}
	return data, true
}

// Set waits for the write buffer to drain so a following Get sees the
// value. The admission policy may still reject it under pressure.
func (r *RistrettoCache[T]) Set(key string, data T) {
	if r.ttl > 0 {
		r.c.SetWithTTL(key, data, 1, r.ttl)
	} else {
		r.c.Set(key, data, 1)
	}
	r.c.Wait()
}

func (r *RistrettoCache[T]) Delete(key string) {
	r.c.Del(key)
}

func (r *RistrettoCache[T]) Clear() {
	r.c.Clear()
}

func (r *RistrettoCache[T]) Close() {
	r.c.Close()
}
