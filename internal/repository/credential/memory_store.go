package credential

import (
	"context"
	"sync"

	"go-jobboard-client/internal/domain"
)

// MemoryStore keeps credentials for the life of the process only.
type MemoryStore struct {
	mu      sync.RWMutex
	token   string
	profile *domain.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creds := domain.Credentials{Token: s.token}
	if s.profile != nil {
		p := *s.profile
		creds.Profile = &p
	}
	return creds, nil
}

func (s *MemoryStore) Save(ctx context.Context, token string, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.profile = &profile
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = nil
	return nil
}
