package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/9seconds/geointel/geolib"
	"github.com/9seconds/geointel/providers"
	"github.com/hjson/hjson-go"
)

const (
	DefaultListen    = "127.0.0.1:8080"
	DefaultUserAgent = "geointel/" + version
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	if dur < 0 {
		return fmt.Errorf("duration should be positive: %s", vv)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen         string           `json:"listen"`
	UserAgent      string           `json:"user_agent"`
	RequestTimeout duration         `json:"request_timeout"`
	Admin          configAdmin      `json:"admin"`
	Cache          configCache      `json:"cache"`
	Providers      []configProvider `json:"providers"`
	Reputation     configReputation `json:"reputation"`
	POI            configPOI        `json:"poi"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}

	return DefaultUserAgent
}

func (c config) GetRequestTimeout() time.Duration {
	if c.RequestTimeout.Duration == 0 {
		return geolib.DefaultRequestTimeout
	}

	return c.RequestTimeout.Duration
}

// GetProviders returns providers in order of priority. If nothing is
// configured, default order is used.
func (c config) GetProviders() []configProvider {
	if len(c.Providers) > 0 {
		return c.Providers
	}

	rv := make([]configProvider, len(providers.DefaultOrder))

	for i, v := range providers.DefaultOrder {
		rv[i] = configProvider{Name: v}
	}

	return rv
}

// GetProviderTimeouts returns a deadline of a single lookup for each
// provider. It is the same as its HTTP timeout.
func (c config) GetProviderTimeouts() map[string]time.Duration {
	rv := map[string]time.Duration{}

	for _, v := range c.GetProviders() {
		rv[v.GetName()] = v.GetHTTPTimeout()
	}

	return rv
}

type configAdmin struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (c configAdmin) Enabled() bool {
	return c.User != "" || c.Password != ""
}

type configCache struct {
	TTL         duration `json:"ttl"`
	Items       uint     `json:"items"`
	RedisURL    string   `json:"redis_url"`
	RedisPrefix string   `json:"redis_prefix"`
}

func (c configCache) GetTTL() time.Duration {
	if c.TTL.Duration == 0 {
		return geolib.DefaultCacheTTL
	}

	return c.TTL.Duration
}

func (c configCache) GetItems() uint {
	if c.Items == 0 {
		return geolib.DefaultCacheItems
	}

	return c.Items
}

func (c configCache) GetRedisPrefix() string {
	if c.RedisPrefix != "" {
		return c.RedisPrefix
	}

	return "geointel:"
}

type configProvider struct {
	Name               string            `json:"name"`
	RateLimitInterval  duration          `json:"rate_limit_interval"`
	RateLimitBurst     uint              `json:"rate_limit_burst"`
	HTTPTimeout        duration          `json:"http_timeout"`
	SpecificParameters map[string]string `json:"specific_parameters"`
}

func (c configProvider) GetName() string {
	return c.Name
}

func (c configProvider) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return geolib.DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configProvider) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return geolib.DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configProvider) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return geolib.DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c configProvider) GetSpecificParameters() map[string]string {
	if c.SpecificParameters == nil {
		return map[string]string{}
	}

	return c.SpecificParameters
}

type configReputation struct {
	Zones       []string `json:"zones"`
	DoHEndpoint string   `json:"doh_endpoint"`
	DoHFormat   string   `json:"doh_format"`
	Timeout     duration `json:"timeout"`
	Workers     uint     `json:"workers"`
}

func (c configReputation) GetZones() []string {
	if len(c.Zones) > 0 {
		return c.Zones
	}

	return geolib.DefaultBlacklistZones
}

func (c configReputation) GetDoHEndpoint() string {
	if c.DoHEndpoint != "" {
		return c.DoHEndpoint
	}

	return geolib.DefaultDoHEndpoint
}

func (c configReputation) GetDoHFormat() string {
	if c.DoHFormat != "" {
		return c.DoHFormat
	}

	return geolib.DoHFormatJSON
}

func (c configReputation) GetTimeout() time.Duration {
	if c.Timeout.Duration == 0 {
		return geolib.DefaultHTTPTimeout
	}

	return c.Timeout.Duration
}

func (c configReputation) GetWorkers() int {
	if c.Workers == 0 {
		return geolib.DefaultReputationWorkers
	}

	return int(c.Workers)
}

type configPOI struct {
	Endpoint string   `json:"endpoint"`
	Timeout  duration `json:"timeout"`
}

func (c configPOI) GetEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}

	return geolib.DefaultOverpassEndpoint
}

func (c configPOI) GetTimeout() time.Duration {
	if c.Timeout.Duration == 0 {
		return geolib.DefaultPOITimeout
	}

	return c.Timeout.Duration
}

func parseConfig(path string) (*config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return parseConfigBytes(content)
}

func parseConfigBytes(content []byte) (*config, error) {
	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}

	rawBytes, _ := json.Marshal(rawMap)

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	seenProviderNames := map[string]struct{}{}

	for _, v := range conf.Providers {
		if v.GetName() == "" {
			return nil, fmt.Errorf("provider name is empty")
		}

		if _, ok := seenProviderNames[v.GetName()]; ok {
			return nil, fmt.Errorf("name %s is duplicated", v.GetName())
		}

		seenProviderNames[v.GetName()] = struct{}{}
	}

	switch conf.Reputation.GetDoHFormat() {
	case geolib.DoHFormatJSON, geolib.DoHFormatWire:
	default:
		return nil, fmt.Errorf("unknown doh format %s", conf.Reputation.DoHFormat)
	}

	return &conf, nil
}
