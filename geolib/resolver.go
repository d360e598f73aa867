package geolib

import (
	"context"
	"net"
	"time"

	"go.uber.org/multierr"
)

// ResolverOpts is a set of optional Resolver parameters. Zero values
// are replaced with defaults.
type ResolverOpts struct {
	Cache       Cache
	CacheTTL    time.Duration
	CallTimeout time.Duration
	Metrics     *Metrics

	// ProviderTimeouts overrides CallTimeout for providers with given
	// names.
	ProviderTimeouts map[string]time.Duration
}

// Resolver asks providers one by one in a given order and returns the
// first successful result. It is not a voting: once somebody responds,
// the rest of providers are not queried.
type Resolver struct {
	providers []Provider
	stats     []*UsageStats
	timeouts  []time.Duration
	cache     Cache
	cacheTTL  time.Duration
	logger    Logger
	metrics   *Metrics
}

// Resolve returns a normalized record for a given IP address. It fails
// with AllProvidersFailedError only if all providers have failed.
func (r *Resolver) Resolve(ctx context.Context, ip net.IP) (*Record, error) {
	if ip == nil {
		return nil, ErrInvalidIP
	}

	cacheKey := "ip:" + ip.String()
	cached := &Record{}

	if r.cache.Get(ctx, cacheKey, cached) {
		return cached, nil
	}

	var errs error

	for i, provider := range r.providers {
		record, err := r.lookup(ctx, provider, r.timeouts[i], ip)

		r.stats[i].Used(err)
		r.metrics.providerLookup(provider.Name(), err)

		if err != nil {
			r.logger.LookupError(ip, provider.Name(), err)
			errs = multierr.Append(errs, err)

			if ctx.Err() != nil {
				break
			}

			continue
		}

		record.Fill(ip, provider.Name())
		r.cache.Set(ctx, cacheKey, record, r.cacheTTL)

		return record, nil
	}

	return nil, &AllProvidersFailedError{err: errs}
}

func (r *Resolver) lookup(ctx context.Context, provider Provider,
	timeout time.Duration, ip net.IP) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	record, err := provider.Lookup(ctx, ip)

	switch {
	case err != nil:
		return nil, err
	case record == nil:
		return nil, &ProviderError{Provider: provider.Name(), Err: ErrEmptyResponse}
	}

	return record, nil
}

// UsageStats returns usage statistics of providers in order of
// querying.
func (r *Resolver) UsageStats() []*UsageStats {
	return r.stats
}

// Providers returns names of providers in order of querying.
func (r *Resolver) Providers() []string {
	rv := make([]string, len(r.providers))

	for i, v := range r.providers {
		rv[i] = v.Name()
	}

	return rv
}

func NewResolver(providers []Provider, logger Logger, opts ResolverOpts) (*Resolver, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	rv := &Resolver{
		providers: providers,
		stats:     make([]*UsageStats, len(providers)),
		timeouts:  make([]time.Duration, len(providers)),
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		logger:    logger,
		metrics:   opts.Metrics,
	}

	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultHTTPTimeout
	}

	for i, v := range providers {
		rv.stats[i] = &UsageStats{Name: v.Name()}
		rv.timeouts[i] = callTimeout

		if timeout := opts.ProviderTimeouts[v.Name()]; timeout > 0 {
			rv.timeouts[i] = timeout
		}
	}

	if rv.cache == nil {
		rv.cache = NewNoopCache()
	}

	if rv.cacheTTL <= 0 {
		rv.cacheTTL = DefaultCacheTTL
	}

	return rv, nil
}
