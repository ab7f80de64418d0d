package tokenstore

import (
	"context"
	"sync"
	"time"
)

type memorySlot struct {
	token     string
	hasToken  bool
	started   Attempt
	written   Attempt
	touchedAt time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	slots map[string]*memorySlot
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory constructs a process-local store.
func NewMemory(cfg Config) Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		slots: make(map[string]*memorySlot),
		ttl:   cfg.TTL,
		now:   now,
	}
}

func (s *memoryStore) Begin(_ context.Context, sid string) (Attempt, error) {
	if sid == "" {
		return 0, ErrEmptySession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.slot(sid)
	slot.started++
	slot.touchedAt = s.now()
	return slot.started, nil
}

func (s *memoryStore) Set(_ context.Context, sid string, attempt Attempt, token string) (bool, error) {
	if sid == "" {
		return false, ErrEmptySession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.slot(sid)
	if attempt < slot.started || attempt < slot.written {
		return false, nil
	}
	slot.token = token
	slot.hasToken = true
	slot.written = attempt
	if attempt > slot.started {
		slot.started = attempt
	}
	slot.touchedAt = s.now()
	return true, nil
}

func (s *memoryStore) Get(_ context.Context, sid string) (string, bool, error) {
	if sid == "" {
		return "", false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[sid]
	if !ok || s.expired(slot) {
		delete(s.slots, sid)
		return "", false, nil
	}
	return slot.token, slot.hasToken, nil
}

func (s *memoryStore) Clear(_ context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[sid]; ok {
		// Bump the counter so responses still in flight cannot resurrect the token.
		slot.started++
		slot.written = slot.started
		slot.token = ""
		slot.hasToken = false
		slot.touchedAt = s.now()
	}
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[string]*memorySlot)
	return nil
}

func (s *memoryStore) slot(sid string) *memorySlot {
	slot, ok := s.slots[sid]
	if !ok || s.expired(slot) {
		slot = &memorySlot{}
		s.slots[sid] = slot
	}
	return slot
}

func (s *memoryStore) expired(slot *memorySlot) bool {
	return s.ttl > 0 && s.now().Sub(slot.touchedAt) > s.ttl
}
