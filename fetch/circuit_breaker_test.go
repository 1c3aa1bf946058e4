package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/git-pkgs/pycompat/client"
	"github.com/git-pkgs/pycompat/internal/pypi"
)

type stubFetcher struct {
	meta  *pypi.Metadata
	err   error
	calls int
}

func (s *stubFetcher) FetchMetadata(ctx context.Context, name string) (*pypi.Metadata, error) {
	s.calls++
	return s.meta, s.err
}

func (s *stubFetcher) Host() string { return "pypi.example" }

func TestFetchMetadata_PassThrough(t *testing.T) {
	stub := &stubFetcher{meta: &pypi.Metadata{Name: "requests", RequiresPython: ">=3.8"}}
	cbf := NewCircuitBreakerFetcher(stub)

	meta, err := cbf.FetchMetadata(context.Background(), "requests")
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if meta.RequiresPython != ">=3.8" {
		t.Errorf("RequiresPython = %q, want %q", meta.RequiresPython, ">=3.8")
	}
}

func TestFetchMetadata_TripsAfterConsecutiveFailures(t *testing.T) {
	stub := &stubFetcher{err: errors.New("connection refused")}
	cbf := NewCircuitBreakerFetcher(stub)

	for i := 0; i < 5; i++ {
		if _, err := cbf.FetchMetadata(context.Background(), "requests"); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}

	// Circuit should now be open: the fetcher must not be called again.
	before := stub.calls
	_, err := cbf.FetchMetadata(context.Background(), "requests")
	if !errors.Is(err, ErrUpstreamDown) {
		t.Fatalf("expected ErrUpstreamDown, got %v", err)
	}
	if stub.calls != before {
		t.Errorf("fetcher called while circuit open")
	}

	if state := cbf.BreakerState()["pypi.example"]; state != "open" {
		t.Errorf("breaker state = %q, want %q", state, "open")
	}
}

func TestFetchMetadata_NotFoundDoesNotTrip(t *testing.T) {
	stub := &stubFetcher{err: &client.NotFoundError{Ecosystem: "pypi", Name: "ghost"}}
	cbf := NewCircuitBreakerFetcher(stub)

	for i := 0; i < 10; i++ {
		_, err := cbf.FetchMetadata(context.Background(), "ghost")
		if !errors.Is(err, client.ErrNotFound) {
			t.Fatalf("attempt %d: expected ErrNotFound, got %v", i, err)
		}
	}

	if stub.calls != 10 {
		t.Errorf("expected 10 fetcher calls, got %d", stub.calls)
	}
	if state := cbf.BreakerState()["pypi.example"]; state != "closed" {
		t.Errorf("breaker state = %q, want %q", state, "closed")
	}
}
