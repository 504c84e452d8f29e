package fetcher

import (
	"fmt"
	"math/rand"
	"net/url"
	"sync"
)

// ProxyPool rotates outbound proxies, one uniform pick per attempt.
// An empty pool means direct connections. Safe for concurrent use.
type ProxyPool struct {
	mu      sync.Mutex
	proxies []*url.URL
	rng     *rand.Rand
}

// NewProxyPool parses the given proxy URLs into a pool.
// Returns an error on the first URL that fails to parse.
func NewProxyPool(proxies []string, seed int64) (*ProxyPool, error) {
	parsed := make([]*url.URL, 0, len(proxies))
	for _, raw := range proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("proxy %q must be an absolute URL", raw)
		}
		parsed = append(parsed, u)
	}
	// #nosec G404 -- identity rotation does not need cryptographic randomness.
	return &ProxyPool{
		proxies: parsed,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Next returns a uniformly chosen proxy, or nil when the pool is empty
// (direct connection).
func (p *ProxyPool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return nil
	}
	return p.proxies[p.rng.Intn(len(p.proxies))]
}

// Size returns the number of proxies in the pool.
func (p *ProxyPool) Size() int {
	return len(p.proxies)
}
