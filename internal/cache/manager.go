package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cleaner is implemented by caches that support expired-entry cleanup.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans all registered caches.
type Manager struct {
	caches []Cleaner
	stop   chan struct{}
	once   sync.Once
}

// NewManager creates a new cache manager.
func NewManager() *Manager {
	return &Manager{stop: make(chan struct{})}
}

// Register adds a cache to the manager. Must be called before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cleaned := 0
				for _, c := range m.caches {
					cleaned += c.CleanExpired()
				}
				if cleaned > 0 {
					slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
}
