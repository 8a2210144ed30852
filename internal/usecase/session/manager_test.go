package session

import (
	"testing"
	"time"

	"github.com/johnquangdev/minutes360/internal/adapter/repository"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/usecase/auth"
	"github.com/johnquangdev/minutes360/internal/usecase/credential"
	"github.com/johnquangdev/minutes360/internal/usecase/pipeline"
)

func newTestManager(idle time.Duration) *Manager {
	return NewManager(func(userID string) *pipeline.Orchestrator {
		return pipeline.NewOrchestrator(userID, pipeline.Dependencies{
			Credentials: credential.NewStore("", ""),
			History:     repository.NewHistoryRepository(),
		})
	}, idle, nil)
}

func TestManager_GetReusesSession(t *testing.T) {
	m := newTestManager(time.Hour)
	a := m.Get("u1")
	if m.Get("u1") != a {
		t.Fatalf("expected the same session for the same user")
	}
	if m.Get("u2") == a {
		t.Fatalf("users must not share sessions")
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", m.Len())
	}
}

func TestManager_DropOnSignOut(t *testing.T) {
	m := newTestManager(time.Hour)
	first := m.Get("u1")

	m.HandleAuthEvent(auth.AuthEvent{Type: auth.EventSignedIn, User: &entities.User{ID: "u1"}})
	if m.Len() != 1 {
		t.Fatalf("sign-in must not drop the session")
	}

	m.HandleAuthEvent(auth.AuthEvent{Type: auth.EventSignedOut, User: &entities.User{ID: "u1"}})
	if m.Len() != 0 {
		t.Fatalf("sign-out did not drop the session")
	}
	if m.Get("u1") == first {
		t.Fatalf("expected a fresh session after sign-out")
	}
	if m.Drop("missing") {
		t.Fatalf("Drop reported success for an unknown user")
	}
}

func TestManager_Sweep(t *testing.T) {
	m := newTestManager(time.Minute)
	m.Get("u1")

	if n := m.Sweep(); n != 0 {
		t.Fatalf("fresh session evicted")
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if n := m.Sweep(); n != 1 || m.Len() != 0 {
		t.Fatalf("idle session not evicted (evicted %d, left %d)", n, m.Len())
	}
}
