package state

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// TTL is how long an issued state token remains valid before it's rejected and
// eligible for removal
const TTL = 1 * time.Hour

// Store issues the anti-forgery state tokens that bind an authorization request
// to the callback it produces: each token is valid for a single callback within
// the TTL window, and any value we didn't mint (or have already consumed) fails
// validation
type Store struct {
	tokens map[string]time.Time
	mu     sync.Mutex
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Issue generates a new cryptographically-random token value and records it as
// live. Expired entries are swept opportunistically here, rather than on a
// timer: tokens are small and short-lived, so the map briefly growing past its
// live set between logins is an acceptable trade for not running a background
// goroutine.
func (s *Store) Issue() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	tokenValue := hex.EncodeToString(bytes)

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-TTL)
	for value, issuedAt := range s.tokens {
		if issuedAt.Before(cutoff) {
			delete(s.tokens, value)
		}
	}

	s.tokens[tokenValue] = s.now()
	return tokenValue
}

// ValidateAndConsume reports whether tokenValue identifies a live, non-expired
// token, removing it in the same critical section so that no two callers can
// both see true for the same value
func (s *Store) ValidateAndConsume(tokenValue string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuedAt, ok := s.tokens[tokenValue]
	if !ok {
		return false
	}
	delete(s.tokens, tokenValue)
	return s.now().Sub(issuedAt) < TTL
}

// Len reports the number of live entries, including any expired entries that
// haven't been swept yet
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
