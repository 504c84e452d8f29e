package fetcher

import (
	"math/rand"
	"sync"
)

// defaultUserAgents is the static fallback pool of realistic desktop browser
// strings, used when no custom pool is supplied.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
}

// UserAgentPool rotates user agent strings, one uniform pick per attempt.
// Safe for concurrent use.
type UserAgentPool struct {
	mu     sync.Mutex
	agents []string
	rng    *rand.Rand
}

// NewUserAgentPool creates a pool from the given strings.
// An empty slice falls back to the built-in desktop pool.
func NewUserAgentPool(agents []string, seed int64) *UserAgentPool {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	// #nosec G404 -- identity rotation does not need cryptographic randomness.
	return &UserAgentPool{
		agents: agents,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Next returns a uniformly chosen user agent string.
func (p *UserAgentPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agents[p.rng.Intn(len(p.agents))]
}

// Size returns the number of strings in the pool.
func (p *UserAgentPool) Size() int {
	return len(p.agents)
}
