// Package cache holds short-lived derived views keyed by string.
package cache

import (
	"fmt"
	"log/slog"
	"time"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Clear drops every entry.
	Clear()
}

// Cleaner is implemented by caches that expire entries lazily.
type Cleaner interface {
	CleanExpired() int
}

const (
	BackendLRU       = "lru"
	BackendRistretto = "ristretto"
)

// New builds a cache for the named backend.
func New[T any](backend string, size int, ttl time.Duration) (Cache[T], error) {
	switch backend {
	case "", BackendLRU:
		return NewLRUCache[T](size, ttl), nil
	case BackendRistretto:
		return NewRistrettoCache[T](size, ttl)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// Manager periodically sweeps expired entries out of registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds c to the sweep if it supports cleanup; other caches are
// ignored.
func (m *Manager) Register(c any) {
	if cl, ok := c.(Cleaner); ok {
		m.caches = append(m.caches, cl)
	}
}

func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				slog.Debug("Cache cleanup removed expired entries", "component", "cache", "removed", n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) sweep() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop gracefully stops the cleanup routine
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	m.started = false
	close(m.stopCleanup)
	<-m.cleanupDone
}
