package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

const (
	// defaultSourceTimeout bounds one source lookup so a single slow host
	// cannot stall the whole gather.
	defaultSourceTimeout = 10 * time.Second

	httpClientTimeout = 60 * time.Second
)

// NewHTTPClient returns the shared client used by all source adapters.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpClientTimeout}
}

// Fetcher runs every configured source lookup for a subject in parallel,
// each behind the rate limiter and a per-source timeout, and assembles the
// aggregate record. A source failing only marks that source absent. The
// aggregate is cached under a subject+source-set key; a cache hit
// short-circuits rate limiting and network entirely.
type Fetcher struct {
	Cache         ports.CacheRepository
	Limiter       ports.RateLimiter
	Sources       []ports.SourceClient
	Logger        ports.Logger
	SourceTimeout time.Duration
}

// Gather implements ports.IntelGatherer.
func (f *Fetcher) Gather(ctx context.Context, subject string) (domain.PackageIntel, error) {
	key := f.cacheKey(subject)

	if f.Cache != nil {
		if raw, ok := f.Cache.Get(key); ok {
			var sources map[string]domain.SourceResult
			if err := json.Unmarshal(raw, &sources); err == nil {
				return domain.PackageIntel{
					Subject:   subject,
					Sources:   sources,
					FromCache: true,
				}, nil
			}
		}
	}

	results := make(chan domain.SourceResult, len(f.Sources))
	var wg sync.WaitGroup
	for _, src := range f.Sources {
		wg.Add(1)
		go func(src ports.SourceClient) {
			defer wg.Done()
			results <- f.lookup(ctx, src, subject)
		}(src)
	}
	wg.Wait()
	close(results)

	intel := domain.PackageIntel{
		Subject:    subject,
		Sources:    make(map[string]domain.SourceResult, len(f.Sources)),
		GatheredAt: time.Now(),
	}
	for res := range results {
		intel.Sources[res.Source] = res
	}

	// A cancelled gather returns what it has but caches nothing.
	if err := ctx.Err(); err != nil {
		return intel, err
	}

	if f.Cache != nil && len(intel.Available()) > 0 {
		if raw, err := json.Marshal(intel.Sources); err == nil {
			if err := f.Cache.Put(key, raw); err != nil && f.Logger != nil {
				f.Logger.Warn("cache write failed", map[string]interface{}{
					"subject": subject,
					"error":   err.Error(),
				})
			}
		}
	}
	return intel, nil
}

func (f *Fetcher) lookup(ctx context.Context, src ports.SourceClient, subject string) domain.SourceResult {
	if f.Limiter != nil {
		if err := f.Limiter.Acquire(ctx, src.Domain()); err != nil {
			return domain.SourceAbsent(src.Name(), "rate limit wait interrupted: "+err.Error())
		}
	}

	timeout := f.SourceTimeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := src.Lookup(lookupCtx, subject)
	if err != nil {
		if f.Logger != nil {
			f.Logger.Debug("source lookup failed", map[string]interface{}{
				"source":  src.Name(),
				"subject": subject,
				"error":   err.Error(),
			})
		}
		return domain.SourceAbsent(src.Name(), err.Error())
	}
	return domain.SourceData(src.Name(), data)
}

// cacheKey builds the composite key over the subject and the source set, so
// changing the configured sources never serves a stale aggregate shape.
func (f *Fetcher) cacheKey(subject string) string {
	names := make([]string, 0, len(f.Sources))
	for _, src := range f.Sources {
		names = append(names, src.Name())
	}
	sort.Strings(names)
	return "package_info_" + subject + "_" + strings.Join(names, "+")
}

var _ ports.IntelGatherer = (*Fetcher)(nil)
