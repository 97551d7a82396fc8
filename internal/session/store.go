package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/golden-vcr/broadcasts"
)

// DefaultMaxAge is the fixed maximum lifetime of a session, measured from
// creation: once it elapses the session is treated as absent regardless of its
// contents
const DefaultMaxAge = 24 * time.Hour

// Session binds an opaque identifier (carried by the client in a cookie) to the
// OAuth credentials and identity claims established by a completed login flow.
// A session with a nil Token is simply "not authenticated": sessions are minted
// eagerly on first contact, before the user has logged in.
type Session struct {
	Id             string
	Token          *oauth2.Token
	Identity       *broadcasts.Identity
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Store is the process-wide registry of sessions. It's deliberately in-memory:
// sessions (and the credentials they hold) are lost on restart, and users
// simply log in again.
type Store struct {
	sessions map[string]*Session
	mu       sync.Mutex
	maxAge   time.Duration
	now      func() time.Time
}

func NewStore(maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{
		sessions: make(map[string]*Session),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Create mints a new, unauthenticated session and returns its id
func (s *Store) Create() string {
	sessionId := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[sessionId] = &Session{
		Id:             sessionId,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	return sessionId
}

// Get returns a copy of the identified session, or nil if no such session
// exists or its maximum lifetime has elapsed. Returning a copy means callers
// never hold a reference into the store: a concurrent SetCredentials can't be
// observed mid-write.
func (s *Store) Get(sessionId string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionId]
	if !ok {
		return nil
	}
	if s.now().Sub(sess.CreatedAt) >= s.maxAge {
		delete(s.sessions, sessionId)
		return nil
	}
	sess.LastAccessedAt = s.now()

	copied := *sess
	return &copied
}

// IsAuthenticated reports whether the identified session exists and holds
// credentials with a non-empty access token
func (s *Store) IsAuthenticated(sessionId string) bool {
	sess := s.Get(sessionId)
	return sess != nil && sess.Token != nil && sess.Token.AccessToken != ""
}

// SetCredentials installs the token and identity produced by a successful
// callback into the identified session, replacing both fields in a single
// critical section. Returns false if the session no longer exists (e.g. it
// expired while the login flow was in flight), in which case nothing is
// written.
func (s *Store) SetCredentials(sessionId string, token *oauth2.Token, identity *broadcasts.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionId]
	if !ok || s.now().Sub(sess.CreatedAt) >= s.maxAge {
		return false
	}
	sess.Token = token
	sess.Identity = identity
	return true
}

// Destroy removes the identified session along with its credentials and
// identity claims. Destroying a session that doesn't exist is a no-op.
func (s *Store) Destroy(sessionId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionId)
}

// Len reports the number of sessions currently held, including any expired
// sessions that haven't been touched since aging out
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
