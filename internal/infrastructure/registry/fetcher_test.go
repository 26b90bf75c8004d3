package registry

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/infrastructure/cache"
	"github.com/doeshing/sdkassist/internal/ports"
)

type stubSource struct {
	name    string
	host    string
	payload json.RawMessage
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (s *stubSource) Name() string   { return s.name }
func (s *stubSource) Domain() string { return s.host }

func (s *stubSource) Lookup(ctx context.Context, subject string) (json.RawMessage, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

type countingLimiter struct {
	calls atomic.Int32
}

func (l *countingLimiter) Acquire(context.Context, string) error {
	l.calls.Add(1)
	return nil
}

func newTestFetcher(t *testing.T, sources ...*stubSource) (*Fetcher, *countingLimiter) {
	t.Helper()
	clients := make([]ports.SourceClient, 0, len(sources))
	for _, s := range sources {
		clients = append(clients, s)
	}
	limiter := &countingLimiter{}
	return &Fetcher{
		Cache:   cache.NewFileCache(domain.CacheSettings{TTL: "1h", Dir: t.TempDir()}),
		Limiter: limiter,
		Sources: clients,
	}, limiter
}

func TestGatherSurvivesSingleSourceFailure(t *testing.T) {
	pypi := &stubSource{name: "pypi", host: "pypi.org", payload: json.RawMessage(`{"name":"requests"}`)}
	github := &stubSource{name: "github", host: "github.com", err: errors.New("connection refused")}
	docs := &stubSource{name: "readthedocs", host: "readthedocs.org", payload: json.RawMessage(`{"title":"Requests"}`)}

	f, _ := newTestFetcher(t, pypi, github, docs)
	intel, err := f.Gather(context.Background(), "requests")
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	if len(intel.Sources) != 3 {
		t.Fatalf("aggregate has %d sources, want 3", len(intel.Sources))
	}
	if intel.Sources["pypi"].Absent || intel.Sources["readthedocs"].Absent {
		t.Fatal("healthy sources marked absent")
	}
	gh := intel.Sources["github"]
	if !gh.Absent || gh.Reason == "" {
		t.Fatalf("failed source not marked absent with reason: %+v", gh)
	}
}

func TestGatherSecondCallServedFromCache(t *testing.T) {
	pypi := &stubSource{name: "pypi", host: "pypi.org", payload: json.RawMessage(`{"name":"requests"}`)}
	github := &stubSource{name: "github", host: "github.com", payload: json.RawMessage(`{"full_name":"psf/requests"}`)}
	docs := &stubSource{name: "readthedocs", host: "readthedocs.org", payload: json.RawMessage(`{"title":"Requests"}`)}

	f, limiter := newTestFetcher(t, pypi, github, docs)
	ctx := context.Background()

	first, err := f.Gather(ctx, "requests")
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if got := len(first.Available()); got != 3 {
		t.Fatalf("first gather has %d available sources, want 3", got)
	}

	acquired := limiter.calls.Load()
	second, err := f.Gather(ctx, "requests")
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if !second.FromCache {
		t.Fatal("second gather not served from cache")
	}
	if pypi.calls.Load() != 1 || github.calls.Load() != 1 || docs.calls.Load() != 1 {
		t.Fatal("cache hit still issued network lookups")
	}
	if limiter.calls.Load() != acquired {
		t.Fatal("cache hit still consumed rate limit capacity")
	}
}

func TestGatherSlowSourceDegradesToAbsent(t *testing.T) {
	slow := &stubSource{name: "pypi", host: "pypi.org", delay: time.Second, payload: json.RawMessage(`{}`)}
	fast := &stubSource{name: "github", host: "github.com", payload: json.RawMessage(`{"full_name":"x/y"}`)}

	f, _ := newTestFetcher(t, slow, fast)
	f.SourceTimeout = 20 * time.Millisecond

	intel, err := f.Gather(context.Background(), "requests")
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if !intel.Sources["pypi"].Absent {
		t.Fatal("slow source not degraded to absent")
	}
	if intel.Sources["github"].Absent {
		t.Fatal("fast source affected by slow peer")
	}
}

func TestGatherCancelledContextIsNotCached(t *testing.T) {
	src := &stubSource{name: "pypi", host: "pypi.org", payload: json.RawMessage(`{}`)}
	f, _ := newTestFetcher(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Gather(ctx, "requests"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Gather() error = %v, want context.Canceled", err)
	}
	entries, err := f.Cache.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("cancelled gather wrote %d cache entries", len(entries))
	}
}

func TestGatherCacheKeyIncludesSourceSet(t *testing.T) {
	a := &Fetcher{Sources: []ports.SourceClient{
		&stubSource{name: "pypi", host: "pypi.org"},
		&stubSource{name: "github", host: "github.com"},
	}}
	b := &Fetcher{Sources: []ports.SourceClient{
		&stubSource{name: "pypi", host: "pypi.org"},
	}}
	if a.cacheKey("requests") == b.cacheKey("requests") {
		t.Fatal("cache key ignores the configured source set")
	}
}
