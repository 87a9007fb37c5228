package service

import (
	"fmt"
	"testing"
	"time"

	"prediction-dashboard/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestSessions(max int, ttl time.Duration) (*Sessions, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSessionsWithLimits(max, ttl)
	s.now = clock.now
	return s, clock
}

func TestSessions_CapEvictsLeastRecentlyUsed(t *testing.T) {
	sessions, clock := newTestSessions(3, time.Hour)

	for i := 0; i < 3; i++ {
		sessions.Get(fmt.Sprintf("tab-%d", i)).Target(models.ThreeClass)
		clock.t = clock.t.Add(time.Second)
	}

	for i := 0; i < 100; i++ {
		sessions.Get(fmt.Sprintf("flood-%d", i))
		clock.t = clock.t.Add(time.Millisecond)
	}
	if n := sessions.Len(); n != 3 {
		t.Errorf("Len = %d, want 3", n)
	}
}

func TestSessions_KeepsRecentSessionState(t *testing.T) {
	sessions, clock := newTestSessions(2, time.Hour)

	sessions.Get("a").Target(models.ThreeClass)
	clock.t = clock.t.Add(time.Second)
	sessions.Get("b")
	clock.t = clock.t.Add(time.Second)
	sessions.Get("a")
	clock.t = clock.t.Add(time.Second)
	sessions.Get("c") // evicts b

	if v, _ := sessions.Get("a").Current(); v != models.ThreeClass {
		t.Errorf("a target = %s, want 3-class", v)
	}
}

func TestSessions_IdleSessionsExpire(t *testing.T) {
	sessions, clock := newTestSessions(10, time.Minute)

	sessions.Get("tab").Target(models.ThreeClass)
	sessions.Get("other")
	clock.t = clock.t.Add(2 * time.Minute)

	if v, _ := sessions.Get("tab").Current(); v != models.SixClass {
		t.Errorf("expired session kept target %s", v)
	}
	if n := sessions.Len(); n != 1 {
		t.Errorf("Len = %d, want 1 after expiry", n)
	}
}
