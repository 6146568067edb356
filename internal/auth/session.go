package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "taskManagementAPI/internal/errors"
	"taskManagementAPI/models"
)

// SessionStore keeps server-side session state. Get must report missing and
// expired sessions as NotFound.
type SessionStore interface {
	Create(ctx context.Context, p models.Profile, expiresAt time.Time) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	UpdateProfile(ctx context.Context, id string, p models.Profile) error
	Delete(ctx context.Context, id string) error
}

var errSessionNotFound = apperrors.New(apperrors.CodeNotFound, "session not found")

// MemorySessionStore is a process-local SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session), now: time.Now}
}

// Create stores a new session and drops every expired one.
func (s *MemorySessionStore) Create(_ context.Context, p models.Profile, expiresAt time.Time) (*models.Session, error) {
	sess := models.Session{ID: uuid.NewString(), Profile: p, ExpiresAt: expiresAt}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, old := range s.sessions {
		if old.Expired(now) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.ID] = sess
	return &sess, nil
}

// Get returns a copy of the session. Expired entries are dropped on access.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, errSessionNotFound
	}
	return &sess, nil
}

func (s *MemorySessionStore) UpdateProfile(_ context.Context, id string, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return errSessionNotFound
	}
	sess.Profile = p
	s.sessions[id] = sess
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
