// Package fetch wraps registry metadata fetching with per-host circuit
// breaking, so a batch run against an unreachable registry fails fast
// instead of spending a full timeout on every package.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/git-pkgs/pycompat/client"
	"github.com/git-pkgs/pycompat/internal/pypi"
)

// ErrUpstreamDown is returned when the circuit for a registry host is open.
var ErrUpstreamDown = errors.New("upstream registry unavailable")

// MetadataFetcher is the metadata-fetch surface of a registry client.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, name string) (*pypi.Metadata, error)
	Host() string
}

// CircuitBreakerFetcher wraps a MetadataFetcher with per-host circuit breakers.
type CircuitBreakerFetcher struct {
	fetcher  MetadataFetcher
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewCircuitBreakerFetcher creates a new circuit breaker wrapper for a fetcher.
func NewCircuitBreakerFetcher(f MetadataFetcher) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		fetcher:  f,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// Host returns the wrapped fetcher's host.
func (cbf *CircuitBreakerFetcher) Host() string {
	return cbf.fetcher.Host()
}

// getBreaker returns or creates a circuit breaker for the given host.
func (cbf *CircuitBreakerFetcher) getBreaker(host string) *circuit.Breaker {
	cbf.mu.RLock()
	breaker, exists := cbf.breakers[host]
	cbf.mu.RUnlock()

	if exists {
		return breaker
	}

	cbf.mu.Lock()
	defer cbf.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := cbf.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures, reopens on exponential backoff
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 10 * time.Second
	expBackoff.MaxInterval = 2 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	cbf.breakers[host] = breaker
	return breaker
}

// FetchMetadata wraps the underlying fetcher with circuit breaker logic.
// A package that is simply not on the registry does not count as a host
// failure; only transport and server errors feed the breaker.
func (cbf *CircuitBreakerFetcher) FetchMetadata(ctx context.Context, name string) (*pypi.Metadata, error) {
	host := cbf.fetcher.Host()
	breaker := cbf.getBreaker(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	var meta *pypi.Metadata
	var notFound *client.NotFoundError
	err := breaker.Call(func() error {
		var fetchErr error
		meta, fetchErr = cbf.fetcher.FetchMetadata(ctx, name)
		if errors.As(fetchErr, &notFound) {
			return nil
		}
		return fetchErr
	}, 0)

	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}

	return meta, nil
}

// BreakerState returns the current state of circuit breakers (for diagnostics).
func (cbf *CircuitBreakerFetcher) BreakerState() map[string]string {
	cbf.mu.RLock()
	defer cbf.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range cbf.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
