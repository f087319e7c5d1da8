package service

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
	"go.uber.org/zap"
)

const (
	DefaultSessionIdleTTL = 30 * time.Minute
	DefaultMaxSessions    = 10000
)

type Session struct {
	ID       string
	Cart     *CartStore
	Checkout *Checkout
}

// Busy reports whether the session has a submission in flight.
func (s *Session) Busy() bool {
	return s.Checkout != nil && s.Checkout.InFlight()
}

type SessionFactory func(id string) *Session

type SessionsConfig struct {
	IdleTTL     time.Duration
	MaxSessions int
	Now         func() time.Time
}

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

// Sessions hands out one cart and checkout per session id, creating them on
// first use. Sessions idle for longer than IdleTTL are dropped by Sweep, and
// at MaxSessions the least recently used idle session makes room. A session
// with a submission in flight is never dropped for idleness.
type Sessions struct {
	mu      sync.Mutex
	entries *simplelru.LRU
	config  SessionsConfig
	factory SessionFactory
	logger  *zap.Logger
}

func NewSessions(config SessionsConfig, factory SessionFactory, logger *zap.Logger) *Sessions {
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultSessionIdleTTL
	}
	if config.MaxSessions <= 0 {
		config.MaxSessions = DefaultMaxSessions
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// size is positive, so NewLRU cannot fail
	entries, _ := simplelru.NewLRU(config.MaxSessions, nil)
	return &Sessions{
		entries: entries,
		config:  config,
		factory: factory,
		logger:  logger,
	}
}

func (s *Sessions) Session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.config.Now()
	if value, ok := s.entries.Get(id); ok {
		entry := value.(*sessionEntry)
		entry.lastUsed = now
		return entry.session
	}

	if s.entries.Len() >= s.config.MaxSessions {
		s.sweepLocked(now)
	}
	if s.entries.Len() >= s.config.MaxSessions {
		s.evictOldestIdleLocked()
	}

	session := s.factory(id)
	s.entries.Add(id, &sessionEntry{session: session, lastUsed: now})
	return session
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}

// Sweep drops every idle session unused for longer than IdleTTL and returns
// how many were dropped.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.config.Now())
}

// Run sweeps every half IdleTTL until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.IdleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := s.Sweep(); dropped > 0 {
				s.logger.Info("expired idle sessions", zap.Int("dropped", dropped), zap.Int("remaining", s.Len()))
			}
		}
	}
}

// sweepLocked walks from least to most recently used and stops at the
// first entry still inside the idle window.
func (s *Sessions) sweepLocked(now time.Time) int {
	dropped := 0
	for _, key := range s.entries.Keys() {
		value, _ := s.entries.Peek(key)
		entry := value.(*sessionEntry)
		if now.Sub(entry.lastUsed) < s.config.IdleTTL {
			break
		}
		if entry.session.Busy() {
			continue
		}
		s.entries.Remove(key)
		dropped++
	}
	return dropped
}

func (s *Sessions) evictOldestIdleLocked() {
	for _, key := range s.entries.Keys() {
		value, _ := s.entries.Peek(key)
		if value.(*sessionEntry).session.Busy() {
			continue
		}
		s.entries.Remove(key)
		s.logger.Debug("evicted least recently used session", zap.Any("session_id", key))
		return
	}
}
