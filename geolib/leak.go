package geolib

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
	"time"
)

// LeakVerification is a verdict on addresses discovered by WebRTC
// probe.
type LeakVerification struct {
	Leaked    bool    `json:"leaked"`
	RealIP    *string `json:"real_ip"`
	Location  *Record `json:"location"`
	CurrentIP string  `json:"current_ip"`
}

type LeakVerifierOpts struct {
	Cache    Cache
	CacheTTL time.Duration
	Metrics  *Metrics
}

// LeakVerifier checks if any of candidate addresses can be geolocated.
// Such address is considered as a real one, leaked past VPN or proxy.
type LeakVerifier struct {
	resolver *Resolver
	cache    Cache
	cacheTTL time.Duration
	logger   Logger
	metrics  *Metrics
}

// Verify never fails: absence of geolocatable candidate is reported as
// no leak.
func (l *LeakVerifier) Verify(ctx context.Context, candidates []string, currentIP string) LeakVerification {
	rv := LeakVerification{
		CurrentIP: currentIP,
	}

	ips := FilterLeakCandidates(candidates, currentIP)
	if len(ips) == 0 {
		l.metrics.leakCheck(false)

		return rv
	}

	cacheKey := leakCacheKey(ips, currentIP)
	cached := LeakVerification{}

	if l.cache.Get(ctx, cacheKey, &cached) {
		return cached
	}

	for _, ip := range ips {
		record, err := l.resolver.Resolve(ctx, ip)
		if err != nil {
			l.logger.LookupError(ip, "leak", err)

			if ctx.Err() != nil {
				break
			}

			continue
		}

		if record.Geolocated() {
			rv.Leaked = true
			rv.RealIP = OptionalString(ip.String())
			rv.Location = record

			break
		}
	}

	l.metrics.leakCheck(rv.Leaked)

	if ctx.Err() == nil {
		l.cache.Set(ctx, cacheKey, rv, l.cacheTTL)
	}

	return rv
}

// FilterLeakCandidates returns unique parseable candidates in original
// order, without current address.
func FilterLeakCandidates(candidates []string, currentIP string) []net.IP {
	current := net.ParseIP(strings.TrimSpace(currentIP))
	seen := map[string]bool{}
	rv := []net.IP{}

	for _, v := range candidates {
		ip := net.ParseIP(strings.TrimSpace(v))

		switch {
		case ip == nil:
			continue
		case current != nil && ip.Equal(current):
			continue
		case seen[ip.String()]:
			continue
		}

		seen[ip.String()] = true
		rv = append(rv, ip)
	}

	return rv
}

func leakCacheKey(ips []net.IP, currentIP string) string {
	hasher := sha256.New()

	hasher.Write([]byte(strings.TrimSpace(currentIP))) // nolint: errcheck

	for _, v := range ips {
		hasher.Write([]byte("|" + v.String())) // nolint: errcheck
	}

	return "leak:" + hex.EncodeToString(hasher.Sum(nil))
}

func NewLeakVerifier(resolver *Resolver, logger Logger, opts LeakVerifierOpts) *LeakVerifier {
	rv := &LeakVerifier{
		resolver: resolver,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger,
		metrics:  opts.Metrics,
	}

	if rv.cache == nil {
		rv.cache = NewNoopCache()
	}

	if rv.cacheTTL <= 0 {
		rv.cacheTTL = DefaultCacheTTL
	}

	return rv
}
