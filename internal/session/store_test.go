package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"

	"github.com/golden-vcr/broadcasts"
)

func Test_Store_lifecycle(t *testing.T) {
	s := NewStore(DefaultMaxAge)

	// A freshly-created session exists but is not authenticated
	sessionId := s.Create()
	sess := s.Get(sessionId)
	assert.NotNil(t, sess)
	assert.Nil(t, sess.Token)
	assert.Nil(t, sess.Identity)
	assert.False(t, s.IsAuthenticated(sessionId))

	// Installing credentials flips it to authenticated, and both fields land
	// together
	ok := s.SetCredentials(sessionId,
		&oauth2.Token{AccessToken: "access-token-value", RefreshToken: "refresh-token-value"},
		&broadcasts.Identity{Id: "109", Email: "tape@goldenvcr.com", Name: "Tape Curator"},
	)
	assert.True(t, ok)
	assert.True(t, s.IsAuthenticated(sessionId))
	sess = s.Get(sessionId)
	assert.Equal(t, "tape@goldenvcr.com", sess.Identity.Email)
	assert.Equal(t, "access-token-value", sess.Token.AccessToken)

	// Destroy clears everything
	s.Destroy(sessionId)
	assert.Nil(t, s.Get(sessionId))
	assert.False(t, s.IsAuthenticated(sessionId))
}

func Test_Store_emptyAccessTokenIsNotAuthenticated(t *testing.T) {
	s := NewStore(DefaultMaxAge)
	sessionId := s.Create()
	assert.True(t, s.SetCredentials(sessionId, &oauth2.Token{}, &broadcasts.Identity{}))
	assert.False(t, s.IsAuthenticated(sessionId))
}

func Test_Store_expiry(t *testing.T) {
	now := time.Now()
	s := NewStore(DefaultMaxAge)
	s.now = func() time.Time { return now }

	sessionId := s.Create()
	assert.True(t, s.SetCredentials(sessionId, &oauth2.Token{AccessToken: "a"}, &broadcasts.Identity{}))
	assert.True(t, s.IsAuthenticated(sessionId))

	// 25 hours after creation the session is gone, credentials and all, even
	// though it was recently accessed
	s.now = func() time.Time { return now.Add(25 * time.Hour) }
	assert.Nil(t, s.Get(sessionId))
	assert.False(t, s.IsAuthenticated(sessionId))

	// ...and a write against the expired session is refused
	assert.False(t, s.SetCredentials(sessionId, &oauth2.Token{AccessToken: "b"}, &broadcasts.Identity{}))
}

func Test_Store_destroyNonexistentIsNoop(t *testing.T) {
	s := NewStore(DefaultMaxAge)
	s.Create()
	s.Create()
	assert.Equal(t, 2, s.Len())

	s.Destroy("no-such-session")
	assert.Equal(t, 2, s.Len())

	// Destroying twice is equally harmless
	s.Destroy("no-such-session")
	assert.Equal(t, 2, s.Len())
}

func Test_Store_getReturnsCopy(t *testing.T) {
	s := NewStore(DefaultMaxAge)
	sessionId := s.Create()
	assert.True(t, s.SetCredentials(sessionId, &oauth2.Token{AccessToken: "a"}, &broadcasts.Identity{Name: "before"}))

	sess := s.Get(sessionId)
	sess.Identity = &broadcasts.Identity{Name: "after"}
	sess.Token = nil

	// Mutating the returned value must not affect the stored session
	assert.True(t, s.IsAuthenticated(sessionId))
	assert.Equal(t, "before", s.Get(sessionId).Identity.Name)
}
