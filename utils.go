package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/9seconds/geointel/geolib"
	"github.com/9seconds/geointel/providers"
	"github.com/go-redis/redis/v8"
)

// secrets are taken from environment or CLI flags and override config
// values of the same providers.
type secrets struct {
	ipregistryKey string
	ipinfoToken   string
}

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeProviders(conf *config, keys secrets, userAgent string) ([]geolib.Provider, error) {
	confProviders := conf.GetProviders()
	rv := make([]geolib.Provider, 0, len(confProviders))

	for _, v := range confProviders {
		params := map[string]string{}

		for key, value := range v.GetSpecificParameters() {
			params[key] = value
		}

		switch {
		case v.GetName() == providers.NameIPRegistry && keys.ipregistryKey != "":
			params["api_key"] = keys.ipregistryKey
		case v.GetName() == providers.NameIPInfo && keys.ipinfoToken != "":
			params["auth_token"] = keys.ipinfoToken
		}

		prov, err := providers.New(v.GetName(), makeHTTPClient(userAgent,
			v.GetHTTPTimeout(),
			v.GetRateLimitInterval(),
			v.GetRateLimitBurst()), params)
		if err != nil {
			return nil, fmt.Errorf("cannot create %s provider: %w", v.GetName(), err)
		}

		rv = append(rv, prov)
	}

	return rv, nil
}

func makeHTTPClient(userAgent string,
	timeout, rateLimitInterval time.Duration,
	rateLimitBurst int) geolib.HTTPClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Jar:     jar,
	}

	return geolib.NewHTTPClient(httpClient,
		userAgent,
		rateLimitInterval,
		rateLimitBurst,
		geolib.DefaultCircuitBreakerOpenThreshold,
		geolib.DefaultCircuitBreakerHalfOpenTimeout,
		geolib.DefaultCircuitBreakerResetFailuresTimeout)
}

// makeCache returns redis cache if redis_url is set. Otherwise in-memory
// cache is used. A returned function has to be called on shutdown.
func makeCache(conf configCache, log geolib.Logger, metrics *geolib.Metrics) (geolib.Cache, func(), error) {
	if conf.RedisURL == "" {
		return geolib.NewMemoryCache(conf.GetItems(), metrics), func() {}, nil
	}

	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("incorrect redis url: %w", err)
	}

	client := redis.NewClient(opts)
	closer := func() {
		client.Close() // nolint: errcheck
	}

	return geolib.NewRedisCache(client, conf.GetRedisPrefix(), log, metrics), closer, nil
}

type service struct {
	resolver   *geolib.Resolver
	reputation *geolib.ReputationScorer
	leaks      *geolib.LeakVerifier
	poi        *geolib.POIClient
	dns        geolib.DNSClient
}

func makeService(conf *config, keys secrets, log geolib.Logger, cache geolib.Cache,
	metrics *geolib.Metrics) (*service, error) {
	provs, err := makeProviders(conf, keys, conf.GetUserAgent())
	if err != nil {
		return nil, err
	}

	resolver, err := geolib.NewResolver(provs, log, geolib.ResolverOpts{
		Cache:            cache,
		CacheTTL:         conf.Cache.GetTTL(),
		Metrics:          metrics,
		ProviderTimeouts: conf.GetProviderTimeouts(),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create resolver: %w", err)
	}

	dohClient := makeHTTPClient(conf.GetUserAgent(),
		conf.Reputation.GetTimeout(),
		geolib.DefaultRateLimitInterval/10,
		geolib.DefaultRateLimitBurst*10)

	dnsClient, err := geolib.NewDNSClient(dohClient,
		conf.Reputation.GetDoHEndpoint(),
		conf.Reputation.GetDoHFormat())
	if err != nil {
		return nil, fmt.Errorf("cannot create dns client: %w", err)
	}

	reputation, err := geolib.NewReputationScorer(dnsClient, log, geolib.ReputationOpts{
		Zones:       conf.Reputation.GetZones(),
		Cache:       cache,
		CacheTTL:    conf.Cache.GetTTL(),
		CallTimeout: conf.Reputation.GetTimeout(),
		Workers:     conf.Reputation.GetWorkers(),
		Metrics:     metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create reputation scorer: %w", err)
	}

	poiClient := makeHTTPClient(conf.GetUserAgent(),
		conf.POI.GetTimeout(),
		geolib.DefaultRateLimitInterval,
		geolib.DefaultRateLimitBurst)

	return &service{
		resolver:   resolver,
		reputation: reputation,
		dns:        dnsClient,
		leaks: geolib.NewLeakVerifier(resolver, log, geolib.LeakVerifierOpts{
			Cache:    cache,
			CacheTTL: conf.Cache.GetTTL(),
			Metrics:  metrics,
		}),
		poi: geolib.NewPOIClient(poiClient, geolib.POIOpts{
			Endpoint: conf.POI.GetEndpoint(),
			Cache:    cache,
			CacheTTL: conf.Cache.GetTTL(),
		}),
	}, nil
}

func (s *service) handler(conf *config, log geolib.Logger) geolib.HandlerOpts {
	return geolib.HandlerOpts{
		Resolver:       s.resolver,
		Reputation:     s.reputation,
		Leaks:          s.leaks,
		POI:            s.poi,
		DNS:            s.dns,
		Logger:         log,
		RequestTimeout: conf.GetRequestTimeout(),
	}
}

func (s *service) Shutdown() {
	s.reputation.Shutdown()
}
