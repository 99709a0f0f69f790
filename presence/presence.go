// Package presence records which profiles were recently seen on a live
// session.
package presence

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a profile counts as online after its last sign of
// life.
const DefaultTTL = 90 * time.Second

// Tracker marks profiles online and offline and answers lookups.
type Tracker interface {
	Online(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// Memory is an in-process Tracker. Entries expire ttl after the last Online.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewMemory creates an in-process tracker. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now, lastSeen: make(map[string]time.Time)}
}

func (m *Memory) Online(_ context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[userID] = m.now()
	return nil
}

func (m *Memory) Offline(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastSeen, userID)
	return nil
}

func (m *Memory) IsOnline(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen, ok := m.lastSeen[userID]
	if !ok {
		return false, nil
	}
	if m.now().Sub(seen) > m.ttl {
		delete(m.lastSeen, userID)
		return false, nil
	}
	return true, nil
}
