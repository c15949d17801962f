// Package session owns the in-memory token→session mapping. Sessions live
// for the process lifetime bounded by a sliding inactivity window; nothing
// is persisted.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/domain/entities"
)

// ErrNotFound is returned when a token maps to no live session.
var ErrNotFound = errors.New("session not found")

// Store maps opaque tokens to sessions. Map membership is serialized by a
// single mutex; per-session mutation is serialized by the session's own
// lock, taken by callers for the duration of each action.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session
	logger   *zap.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*entities.Session),
		logger:   logger,
	}
}

// GetOrCreate returns the given token when it maps to a live session;
// otherwise it allocates a new token and a fresh uninitialized session.
// Expired sessions are evicted here, so an old cookie silently starts over.
func (s *Store) GetOrCreate(token, defaultLanguage string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != "" {
		if sess, ok := s.sessions[token]; ok {
			if !sess.IsExpired() {
				return token
			}
			delete(s.sessions, token)
			s.logger.Info("Evicted expired session", zap.String("token", token))
		}
	}

	newToken := uuid.NewString()
	s.sessions[newToken] = entities.NewSession(newToken, defaultLanguage)
	s.logger.Info("Created session", zap.String("token", newToken))
	return newToken
}

// Get looks up a live session by token.
func (s *Store) Get(token string) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		delete(s.sessions, token)
		s.logger.Info("Evicted expired session", zap.String("token", token))
		return nil, ErrNotFound
	}
	return sess, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
