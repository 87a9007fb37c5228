package service

import (
	"sync"
	"time"

	"prediction-dashboard/internal/models"
)

// DefaultSession is used when a caller does not identify its session.
const DefaultSession = "default"

// Session tracks what one user is looking at and the result shown for it.
// Every change of target bumps the generation; a response dispatched under
// an older generation is not allowed into the current slot.
type Session struct {
	mu         sync.Mutex
	target     models.ModelVariant
	generation uint64
	current    *models.PredictionRecord
}

// Target points the session at variant and returns the generation a request
// dispatched now should carry.
func (s *Session) Target(variant models.ModelVariant) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target != variant {
		s.target = variant
		s.generation++
		s.current = nil
	}
	return s.generation
}

// Offer stores rec as the current result unless the session has moved on.
func (s *Session) Offer(generation uint64, rec *models.PredictionRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	s.current = rec
	return true
}

// Current returns the active target and its latest result, if any.
func (s *Session) Current() (models.ModelVariant, *models.PredictionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.current
}

// Session registry limits
const (
	DefaultMaxSessions = 1024
	DefaultSessionTTL  = 30 * time.Minute
)

// Sessions indexes sessions by id. Sessions idle for longer than the TTL are
// dropped, and once the registry is full the least recently used one is
// evicted to make room.
type Sessions struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	lastSeen    map[string]time.Time
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

// NewSessions creates an empty session registry with the default limits
func NewSessions() *Sessions {
	return NewSessionsWithLimits(DefaultMaxSessions, DefaultSessionTTL)
}

// NewSessionsWithLimits creates an empty registry holding at most
// maxSessions sessions, each expiring after ttl without use.
func NewSessionsWithLimits(maxSessions int, ttl time.Duration) *Sessions {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		sessions:    make(map[string]*Session),
		lastSeen:    make(map[string]time.Time),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Get returns the session for id, creating it on first use. New sessions
// start on the 6-class complaint model.
func (s *Sessions) Get(id string) *Session {
	if id == "" {
		id = DefaultSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[id]
	if ok && now.Sub(s.lastSeen[id]) > s.ttl {
		s.remove(id)
		ok = false
	}
	if !ok {
		s.makeRoom(now)
		sess = &Session{target: models.SixClass}
		s.sessions[id] = sess
	}
	s.lastSeen[id] = now
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// makeRoom drops expired sessions and, if the registry is still full, the
// least recently used one. Must be called with s.mu held.
func (s *Sessions) makeRoom(now time.Time) {
	for id, seen := range s.lastSeen {
		if now.Sub(seen) > s.ttl {
			s.remove(id)
		}
	}
	if len(s.sessions) < s.maxSessions {
		return
	}

	var oldestID string
	var oldest time.Time
	for id, seen := range s.lastSeen {
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	s.remove(oldestID)
}

func (s *Sessions) remove(id string) {
	delete(s.sessions, id)
	delete(s.lastSeen, id)
}
