// Package proxy implements the rendering proxy clients that fetch
// JavaScript-rendered article pages.
package proxy

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Provider is the interface every rendering proxy must implement.
type Provider interface {
	// Name returns the provider identifier (e.g. "oxylabs", "zyte").
	Name() string

	// Fetch retrieves the fully rendered HTML for url. Every failure
	// cause (auth, timeout, bad status, malformed body) is an error;
	// callers treat all of them uniformly as "no response".
	Fetch(ctx context.Context, url string) (string, error)
}

// Registry holds the configured providers keyed by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a Registry from the given providers.
func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the named provider, or false when the name is unknown.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// maxProxyBody caps how much of a proxy response is read, preventing
// unbounded memory use on a misbehaving upstream.
const maxProxyBody = 32 << 20

// newProxyClient builds the http.Client both providers share: a hard
// end-to-end timeout and no redirect following. A redirect status comes back
// as-is and fails the non-200 check like any other unexpected status.
func newProxyClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
