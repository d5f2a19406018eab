package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocLocks_ReleasesEntries(t *testing.T) {
	var l docLocks

	unlock := l.lock("a")
	assert.Equal(t, 1, l.len())
	unlock()
	assert.Equal(t, 0, l.len())

	for _, name := range []string{"x", "y", "z"} {
		l.lock(name)()
	}
	assert.Equal(t, 0, l.len())
}

func TestDocLocks_SerializesSameName(t *testing.T) {
	var (
		l       docLocks
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock("doc")
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.len())
}
