package httpapi

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func fillLimiter(cl *clientLimiter, n int) {
	for i := 0; i < n; i++ {
		cl.limiterFor(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
}

func TestClientLimiter_SameIPSameLimiter(t *testing.T) {
	cl := &clientLimiter{m: make(map[string]*clientEntry), r: rate.Limit(1), b: 1}
	assert.Same(t, cl.limiterFor("10.0.0.1"), cl.limiterFor("10.0.0.1"))
	assert.NotSame(t, cl.limiterFor("10.0.0.1"), cl.limiterFor("10.0.0.2"))
}

func TestClientLimiter_EvictsIdleEntries(t *testing.T) {
	cl := &clientLimiter{m: make(map[string]*clientEntry), r: rate.Limit(1), b: 1}
	fillLimiter(cl, maxClientLimiters)
	require.Len(t, cl.m, maxClientLimiters)

	// age every entry past the idle TTL
	old := time.Now().Add(-2 * clientIdleTTL)
	cl.mu.Lock()
	for _, e := range cl.m {
		e.seen = old
	}
	cl.mu.Unlock()

	cl.limiterFor("192.168.1.1")

	cl.mu.Lock()
	defer cl.mu.Unlock()
	assert.Len(t, cl.m, 1)
	_, ok := cl.m["192.168.1.1"]
	assert.True(t, ok)
}

func TestClientLimiter_BoundedWhenAllActive(t *testing.T) {
	cl := &clientLimiter{m: make(map[string]*clientEntry), r: rate.Limit(1), b: 1}
	fillLimiter(cl, maxClientLimiters)

	// nobody is idle, so room is made by dropping arbitrary entries
	cl.limiterFor("192.168.1.1")

	cl.mu.Lock()
	defer cl.mu.Unlock()
	assert.Len(t, cl.m, maxClientLimiters)
	_, ok := cl.m["192.168.1.1"]
	assert.True(t, ok)
}

func TestClientLimiter_TouchRefreshesIdleClock(t *testing.T) {
	cl := &clientLimiter{m: make(map[string]*clientEntry), r: rate.Limit(1), b: 1}
	fillLimiter(cl, maxClientLimiters)

	old := time.Now().Add(-2 * clientIdleTTL)
	cl.mu.Lock()
	for _, e := range cl.m {
		e.seen = old
	}
	cl.mu.Unlock()

	// a request from a known IP refreshes its entry, so the eviction
	// for the next new client drops everyone else but keeps it
	cl.limiterFor("10.0.0.1")
	cl.limiterFor("192.168.1.1")

	cl.mu.Lock()
	defer cl.mu.Unlock()
	assert.Len(t, cl.m, 2)
	_, ok := cl.m["10.0.0.1"]
	assert.True(t, ok)
	_, ok = cl.m["192.168.1.1"]
	assert.True(t, ok)
}
