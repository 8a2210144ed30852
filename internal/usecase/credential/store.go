package credential

import (
	"strings"
	"sync"

	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// Store holds the Trello API key and token of one session
type Store struct {
	mu    sync.RWMutex
	creds entities.Credentials
}

// NewStore creates a store seeded with the given key and token
func NewStore(apiKey, token string) *Store {
	return &Store{
		creds: entities.Credentials{APIKey: apiKey, Token: token},
	}
}

// Get returns the current credentials
func (s *Store) Get() entities.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Set replaces the non-empty halves and returns the resulting credentials
func (s *Store) Set(apiKey, token string) entities.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	if apiKey != "" {
		s.creds.APIKey = apiKey
	}
	if token != "" {
		s.creds.Token = token
	}
	return s.creds
}

// Masked returns the credentials with all but the last four characters hidden
func (s *Store) Masked() entities.Credentials {
	c := s.Get()
	return entities.Credentials{
		APIKey: mask(c.APIKey),
		Token:  mask(c.Token),
	}
}

func mask(secret string) string {
	r := []rune(secret)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
