package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionEntry struct {
	session      *Session
	lastAccessed time.Time
}

// Cache holds the live sessions. When full, the least recently used session
// is ended to make room for a new one.
type Cache struct {
	lock     sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	maxSize  int
	opts     Options
}

func NewCache(maxSize int, opts Options) *Cache {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Cache{
		sessions: make(map[uuid.UUID]*sessionEntry, maxSize),
		maxSize:  maxSize,
		opts:     opts,
	}
}

func (c *Cache) Create() *Session {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.maxSize > 0 && len(c.sessions) >= c.maxSize {
		c.evictOldest()
	}

	session := New(uuid.New(), c.opts)
	c.sessions[session.Id] = &sessionEntry{
		session:      session,
		lastAccessed: c.opts.Clock(),
	}

	slog.Info("session started", "session_id", session.Id)
	return session
}

func (c *Cache) evictOldest() {
	oldestSessionID := uuid.Nil
	var oldestTime time.Time
	for id, entry := range c.sessions {
		if oldestSessionID == uuid.Nil || entry.lastAccessed.Before(oldestTime) {
			oldestSessionID = id
			oldestTime = entry.lastAccessed
		}
	}

	if oldestSessionID != uuid.Nil {
		delete(c.sessions, oldestSessionID)
		slog.Info("session evicted", "session_id", oldestSessionID)
	}
}

func (c *Cache) Get(id uuid.UUID) (*Session, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry, exists := c.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}

	entry.lastAccessed = c.opts.Clock()
	return entry.session, nil
}

// End discards the session and everything it holds.
func (c *Cache) End(id uuid.UUID) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if _, exists := c.sessions[id]; !exists {
		return ErrNotFound
	}
	delete(c.sessions, id)

	slog.Info("session ended", "session_id", id)
	return nil
}

func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.sessions)
}

// ExpireIdle ends every session not accessed within ttl and returns how many were ended.
func (c *Cache) ExpireIdle(ttl time.Duration) int {
	c.lock.Lock()
	defer c.lock.Unlock()

	cutoff := c.opts.Clock().Add(-ttl)
	expired := 0
	for id, entry := range c.sessions {
		if entry.lastAccessed.Before(cutoff) {
			delete(c.sessions, id)
			expired++
		}
	}
	return expired
}

// RunExpiry calls ExpireIdle every interval until ctx is done.
func (c *Cache) RunExpiry(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.ExpireIdle(ttl); n > 0 {
				slog.Info("expired idle sessions", "count", n, "remaining", c.Len())
			}
		}
	}
}
