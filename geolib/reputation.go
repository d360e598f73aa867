package geolib

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/panjf2000/ants/v2"
)

const (
	ReputationSourceDNSBL    = "dnsbl"
	ReputationSourceFallback = "fallback"

	// FallbackReputationScore is returned if no blacklist could be
	// checked.
	FallbackReputationScore = 85

	DefaultReputationWorkers = 64

	reputationPoolExpireTime = time.Minute
)

// DefaultBlacklistZones is a set of DNSBL zones which are checked if
// nothing else is configured.
var DefaultBlacklistZones = []string{
	"zen.spamhaus.org",
	"bl.spamcop.net",
	"b.barracudacentral.org",
	"dnsbl.sorbs.net",
}

var (
	errBlacklistRefused     = errors.New("blacklist has refused to answer")
	errBlacklistUnexpected  = errors.New("unexpected blacklist answer")
	blacklistListedNetwork  = mustParseCIDR("127.0.0.0/8")
	blacklistRefusedNetwork = mustParseCIDR("127.255.255.0/24")
)

// ReputationResult is a purity score of IP address. Higher score means
// more trustworthy address.
type ReputationResult struct {
	Score  int    `json:"score"`
	Status string `json:"status"`
	Raw    int    `json:"raw"`
	Source string `json:"source"`
}

type ReputationOpts struct {
	Zones       []string
	Cache       Cache
	CacheTTL    time.Duration
	CallTimeout time.Duration
	Workers     int
	Metrics     *Metrics
}

type zoneCheckRequest struct {
	ctx    context.Context
	ip     net.IP
	zone   string
	result *zoneCheckResult
	wg     *sync.WaitGroup
}

type zoneCheckResult struct {
	checked bool
	listed  bool
}

// ReputationScorer checks IP addresses against DNS blacklists. Zones
// are checked in parallel with a worker pool.
type ReputationScorer struct {
	dns         DNSClient
	zones       []string
	cache       Cache
	cacheTTL    time.Duration
	callTimeout time.Duration
	logger      Logger
	metrics     *Metrics
	workerPool  *ants.PoolWithFunc
}

// Score returns a reputation of IP address. It never fails: if none of
// blacklists were checked, it returns a fallback score.
func (r *ReputationScorer) Score(ctx context.Context, ip net.IP) ReputationResult {
	if ip == nil {
		return FallbackReputation()
	}

	cacheKey := "reputation:" + ip.String()
	cached := ReputationResult{}

	if r.cache.Get(ctx, cacheKey, &cached) {
		return cached
	}

	results := make([]zoneCheckResult, len(r.zones))
	wg := &sync.WaitGroup{}

	for i, zone := range r.zones {
		wg.Add(1)

		req := &zoneCheckRequest{
			ctx:    ctx,
			ip:     ip,
			zone:   zone,
			result: &results[i],
			wg:     wg,
		}

		if err := r.workerPool.Invoke(req); err != nil {
			wg.Done()
			r.logger.ReputationError(ip, zone, fmt.Errorf("cannot schedule a task: %w", err))
		}
	}

	wg.Wait()

	checked, listed := 0, 0

	for _, v := range results {
		if v.checked {
			checked++
		}

		if v.listed {
			listed++
		}
	}

	if checked == 0 {
		return FallbackReputation()
	}

	rv := ComputeReputation(listed, checked)

	r.cache.Set(ctx, cacheKey, rv, r.cacheTTL)

	return rv
}

func (r *ReputationScorer) checkZone(args interface{}) {
	req := args.(*zoneCheckRequest)
	defer req.wg.Done()

	ctx, cancel := context.WithTimeout(req.ctx, r.callTimeout)
	defer cancel()

	listed, err := r.isListed(ctx, req.ip, req.zone)
	if err != nil {
		r.logger.ReputationError(req.ip, req.zone, err)
		r.metrics.reputationCheck(req.zone, "error")

		return
	}

	req.result.checked = true
	req.result.listed = listed

	if listed {
		r.metrics.reputationCheck(req.zone, "listed")
	} else {
		r.metrics.reputationCheck(req.zone, "clean")
	}
}

func (r *ReputationScorer) isListed(ctx context.Context, ip net.IP, zone string) (bool, error) {
	name, err := BlacklistQueryName(ip, zone)
	if err != nil {
		return false, err
	}

	answers, err := r.dns.LookupA(ctx, name)
	if err != nil {
		return false, err
	}

	return classifyBlacklistAnswers(answers)
}

// Shutdown releases worker pool.
func (r *ReputationScorer) Shutdown() {
	r.workerPool.Release()
}

// BlacklistQueryName returns a DNS name to query for a given IP in a
// DNSBL zone: 1.2.3.4 in zen.spamhaus.org is 4.3.2.1.zen.spamhaus.org.
// IPv6 addresses are represented with reversed nibbles.
func BlacklistQueryName(ip net.IP, zone string) (string, error) {
	reversed, err := dns.ReverseAddr(ip.String())
	if err != nil {
		return "", fmt.Errorf("cannot reverse ip address: %w", err)
	}

	if ip.To4() != nil {
		reversed = strings.TrimSuffix(reversed, "in-addr.arpa.")
	} else {
		reversed = strings.TrimSuffix(reversed, "ip6.arpa.")
	}

	return reversed + strings.Trim(zone, "."), nil
}

// ComputeReputation converts a number of listings into a score.
func ComputeReputation(listed, checked int) ReputationResult {
	if checked <= 0 {
		return FallbackReputation()
	}

	score := 100 - int(math.Round(float64(listed)/float64(checked)*100))

	switch {
	case score < 0:
		score = 0
	case score > 100:
		score = 100
	}

	return ReputationResult{
		Score:  score,
		Status: reputationStatus(score),
		Raw:    listed,
		Source: ReputationSourceDNSBL,
	}
}

// FallbackReputation is a neutral result which is returned if nothing
// could be checked.
func FallbackReputation() ReputationResult {
	return ReputationResult{
		Score:  FallbackReputationScore,
		Status: "unknown",
		Raw:    0,
		Source: ReputationSourceFallback,
	}
}

func reputationStatus(score int) string {
	switch {
	case score >= 90:
		return "clean"
	case score >= 70:
		return "low_risk"
	case score >= 40:
		return "medium_risk"
	}

	return "high_risk"
}

func classifyBlacklistAnswers(answers []net.IP) (bool, error) {
	if len(answers) == 0 {
		return false, nil
	}

	for _, v := range answers {
		switch {
		case blacklistRefusedNetwork.Contains(v):
			return false, errBlacklistRefused
		case blacklistListedNetwork.Contains(v):
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: %v", errBlacklistUnexpected, answers)
}

func mustParseCIDR(value string) *net.IPNet {
	_, network, err := net.ParseCIDR(value)
	if err != nil {
		panic(err)
	}

	return network
}

func NewReputationScorer(dnsClient DNSClient, logger Logger, opts ReputationOpts) (*ReputationScorer, error) {
	rv := &ReputationScorer{
		dns:         dnsClient,
		zones:       opts.Zones,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		callTimeout: opts.CallTimeout,
		logger:      logger,
		metrics:     opts.Metrics,
	}

	if len(rv.zones) == 0 {
		rv.zones = DefaultBlacklistZones
	}

	if rv.cache == nil {
		rv.cache = NewNoopCache()
	}

	if rv.cacheTTL <= 0 {
		rv.cacheTTL = DefaultCacheTTL
	}

	if rv.callTimeout <= 0 {
		rv.callTimeout = DefaultHTTPTimeout
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultReputationWorkers
	}

	pool, err := ants.NewPoolWithFunc(workers, rv.checkZone,
		ants.WithExpiryDuration(reputationPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	rv.workerPool = pool

	return rv, nil
}
