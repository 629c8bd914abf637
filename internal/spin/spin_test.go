package spin

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutualExclusion(t *testing.T) {
	var l Lock
	var wg sync.WaitGroup
	n := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				l.Lock()
				n++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, n)
}

func TestTryLock(t *testing.T) {
	var l Lock
	assert.True(t, l.TryLock())
	assert.False(t, l.TryLock())
	l.Unlock()
	assert.True(t, l.TryLock())
	l.Unlock()
}

func TestUnlockFree(t *testing.T) {
	var l Lock
	assert.Panics(t, l.Unlock)
}

var _ sync.Locker = (*Lock)(nil)
