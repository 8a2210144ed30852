package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/minutes360/internal/usecase/auth"
	"github.com/johnquangdev/minutes360/internal/usecase/pipeline"
)

// Factory builds the pipeline of a newly seen user
type Factory func(userID string) *pipeline.Orchestrator

// Manager keeps one pipeline session per signed-in user
type Manager struct {
	factory     Factory
	idleTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*pipeline.Orchestrator

	stop chan struct{}
	once sync.Once
}

// NewManager creates a session manager. Sessions idle longer than idleTimeout are
// dropped by the sweeper started with Start.
func NewManager(factory Factory, idleTimeout time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		factory:     factory,
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*pipeline.Orchestrator),
		stop:        make(chan struct{}),
	}
}

// Get returns the user's session, creating it on first use
func (m *Manager) Get(userID string) *pipeline.Orchestrator {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o, ok := m.sessions[userID]; ok {
		return o
	}
	o := m.factory(userID)
	m.sessions[userID] = o
	m.logger.Info("Pipeline session created", zap.String("session_id", userID))
	return o
}

// Drop discards the user's session, cancelling any upload in flight
func (m *Manager) Drop(userID string) bool {
	m.mu.Lock()
	o, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if !ok {
		return false
	}
	o.Cancel()
	m.logger.Info("Pipeline session dropped", zap.String("session_id", userID))
	return true
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// HandleAuthEvent drops the session of a user who signed out
func (m *Manager) HandleAuthEvent(event auth.AuthEvent) {
	if event.Type == auth.EventSignedOut && event.User != nil {
		m.Drop(event.User.ID)
	}
}

// Start runs the idle sweeper until Close is called
func (m *Manager) Start(interval time.Duration) {
	if interval <= 0 || m.idleTimeout <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Sweep drops sessions idle longer than the idle timeout; busy sessions are kept
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var expired []string
	for id, o := range m.sessions {
		if !o.IsBusy() && o.LastActivity().Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	if len(expired) > 0 {
		m.logger.Info("Idle pipeline sessions evicted", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Close stops the sweeper
func (m *Manager) Close() {
	m.once.Do(func() { close(m.stop) })
}
