package geolib

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Provider is an adapter for some upstream geolocation service. It has
// to return a record with fields mapped from a native response of the
// service. Derived fields are filled by Resolver.
type Provider interface {
	Name() string
	Lookup(context.Context, net.IP) (*Record, error)
}

// HTTPClient is an interface for HTTP client which is used by providers
// and other remote collaborators. Please see NewHTTPClient.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Cache is a best-effort key-value storage with TTL. Implementations
// must never block a request: any backend failure is a miss.
type Cache interface {
	// Get fills dst with a cached value. It returns false if value is
	// absent, expired or cannot be decoded.
	Get(ctx context.Context, key string, dst interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// DNSClient resolves A records of the given name. No answers and
// NXDOMAIN both mean empty response without error.
type DNSClient interface {
	LookupA(ctx context.Context, name string) ([]net.IP, error)
}

type Logger interface {
	LookupError(ip net.IP, name string, err error)
	ReputationError(ip net.IP, zone string, err error)
	CacheError(key string, err error)
	InternalError(msg string, err error)
}
