package geolib

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "geointel"

// Metrics is a set of prometheus collectors. nil Metrics is valid and
// does nothing.
type Metrics struct {
	providerLookups  *prometheus.CounterVec
	cacheRequests    *prometheus.CounterVec
	reputationChecks *prometheus.CounterVec
	leakChecks       *prometheus.CounterVec
}

func (m *Metrics) providerLookup(provider string, err error) {
	if m != nil {
		m.providerLookups.WithLabelValues(provider, resultLabel(err == nil)).Inc()
	}
}

func (m *Metrics) cacheRequest(cache string, hit bool) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	m.cacheRequests.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) reputationCheck(zone, result string) {
	if m != nil {
		m.reputationChecks.WithLabelValues(zone, result).Inc()
	}
}

func (m *Metrics) leakCheck(leaked bool) {
	if m == nil {
		return
	}

	result := "clean"
	if leaked {
		result = "leaked"
	}

	m.leakChecks.WithLabelValues(result).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}

	return "failure"
}

// NewMetrics creates collectors and registers them in a given
// registerer.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	rv := &Metrics{
		providerLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_lookups_total",
			Help:      "A number of lookups made to geolocation providers.",
		}, []string{"provider", "result"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_requests_total",
			Help:      "A number of cache reads.",
		}, []string{"cache", "result"}),
		reputationChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reputation_checks_total",
			Help:      "A number of DNS blacklist checks.",
		}, []string{"zone", "result"}),
		leakChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "leak_verifications_total",
			Help:      "A number of WebRTC leak verifications.",
		}, []string{"result"}),
	}

	for _, v := range []prometheus.Collector{
		rv.providerLookups,
		rv.cacheRequests,
		rv.reputationChecks,
		rv.leakChecks,
	} {
		if err := registerer.Register(v); err != nil {
			return nil, err
		}
	}

	return rv, nil
}
