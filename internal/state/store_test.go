package state

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Store_ValidateAndConsume(t *testing.T) {
	s := NewStore()
	value := s.Issue()
	assert.NotEmpty(t, value)

	// The first use of a live token succeeds; every subsequent use of the same
	// value fails
	assert.True(t, s.ValidateAndConsume(value))
	assert.False(t, s.ValidateAndConsume(value))
	assert.False(t, s.ValidateAndConsume(value))

	// Values we never issued are rejected outright
	assert.False(t, s.ValidateAndConsume("never-issued"))
	assert.False(t, s.ValidateAndConsume(""))
}

func Test_Store_issuesUniqueValues(t *testing.T) {
	s := NewStore()
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		value := s.Issue()
		assert.False(t, seen[value])
		seen[value] = true
	}
}

func Test_Store_rejectsExpiredTokens(t *testing.T) {
	now := time.Now()
	s := NewStore()
	s.now = func() time.Time { return now }

	value := s.Issue()

	// 61 minutes later, the token is expired: it's rejected even though it was
	// never used
	s.now = func() time.Time { return now.Add(61 * time.Minute) }
	assert.False(t, s.ValidateAndConsume(value))
}

func Test_Store_sweepsExpiredTokensOnIssue(t *testing.T) {
	now := time.Now()
	s := NewStore()
	s.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		s.Issue()
	}
	assert.Equal(t, 10, s.Len())

	// Once the originals have aged out, the next Issue purges them, leaving
	// only the newly-minted token
	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	s.Issue()
	assert.Equal(t, 1, s.Len())
}

func Test_Store_concurrentConsumeYieldsSingleSuccess(t *testing.T) {
	s := NewStore()
	value := s.Issue()

	var successes atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.ValidateAndConsume(value) {
				successes.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}
