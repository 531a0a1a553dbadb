package secretProviders

import (
	"sync"
	"time"
)

// CachingProvider wraps another SecretProvider and caches each secret after its
// first successful fetch. The cache is owned by whoever constructs it (normally
// the process lifecycle) and is explicitly invalidatable, so a secret rotation
// takes effect on Invalidate or TTL expiry rather than requiring a restart.
type CachingProvider struct {
	source SecretProvider
	ttl    time.Duration // zero means cache forever
	mu     sync.RWMutex
	values map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

func NewCachingProvider(source SecretProvider, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		source: source,
		ttl:    ttl,
		values: map[string]cachedSecret{},
	}
}

func (p *CachingProvider) GetSecret(name string) (string, error) {
	p.mu.RLock()
	entry, ok := p.values[name]
	p.mu.RUnlock()
	if ok && !p.expired(entry) {
		return entry.value, nil
	}

	value, err := p.source.GetSecret(name)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	p.values[name] = cachedSecret{value: value, fetchedAt: time.Now()}
	p.mu.Unlock()
	return value, nil
}

// Invalidate drops all cached values. The next GetSecret goes back to the source.
func (p *CachingProvider) Invalidate() {
	p.mu.Lock()
	p.values = map[string]cachedSecret{}
	p.mu.Unlock()
}

func (p *CachingProvider) expired(entry cachedSecret) bool {
	if p.ttl == 0 {
		return false
	}
	return time.Since(entry.fetchedAt) > p.ttl
}
