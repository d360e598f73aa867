package geolib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"
	DefaultPOIRadius        = 3000
	MaxPOIRadius            = 10000
	DefaultPOITimeout       = 10 * time.Second

	poiMaxResponseSize = 4 * 1024 * 1024
)

var poiAmenities = []string{"hospital", "school", "police"}

// POI is a point of interest near geolocated address.
type POI struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type overpassResponse struct {
	Elements []struct {
		Lat    *float64 `json:"lat"`
		Lon    *float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

type POIOpts struct {
	Endpoint string
	Cache    Cache
	CacheTTL time.Duration
}

// POIClient searches for hospitals, schools and police stations around
// a given point with Overpass API.
type POIClient struct {
	endpoint string
	client   HTTPClient
	cache    Cache
	cacheTTL time.Duration
}

func (p *POIClient) Nearby(ctx context.Context, lat, lng float64, radius int) ([]POI, error) {
	if radius <= 0 {
		radius = DefaultPOIRadius
	}

	if radius > MaxPOIRadius {
		radius = MaxPOIRadius
	}

	latStr := strconv.FormatFloat(lat, 'f', -1, 64)
	lngStr := strconv.FormatFloat(lng, 'f', -1, 64)
	cacheKey := "poi:" + latStr + ":" + lngStr + ":" + strconv.Itoa(radius)
	rv := []POI{}

	if p.cache.Get(ctx, cacheKey, &rv) {
		return rv, nil
	}

	form := url.Values{}
	form.Set("data", overpassQuery(latStr, lngStr, radius))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	jsonResponse := overpassResponse{}

	if err := json.NewDecoder(io.LimitReader(resp.Body, poiMaxResponseSize)).Decode(&jsonResponse); err != nil {
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	for _, v := range jsonResponse.Elements {
		poi := POI{
			Type: v.Tags["amenity"],
			Name: v.Tags["name"],
		}

		switch {
		case v.Lat != nil && v.Lon != nil:
			poi.Lat, poi.Lng = *v.Lat, *v.Lon
		case v.Center != nil:
			poi.Lat, poi.Lng = v.Center.Lat, v.Center.Lon
		default:
			continue
		}

		if poi.Name == "" && poi.Type != "" {
			poi.Name = strings.ToUpper(poi.Type[:1]) + poi.Type[1:]
		}

		rv = append(rv, poi)
	}

	p.cache.Set(ctx, cacheKey, rv, p.cacheTTL)

	return rv, nil
}

func overpassQuery(lat, lng string, radius int) string {
	builder := strings.Builder{}

	builder.WriteString("[out:json];(")

	for _, v := range poiAmenities {
		fmt.Fprintf(&builder, `node["amenity"="%s"](around:%d,%s,%s);`, v, radius, lat, lng)
	}

	builder.WriteString(");out center;")

	return builder.String()
}

func NewPOIClient(client HTTPClient, opts POIOpts) *POIClient {
	rv := &POIClient{
		endpoint: opts.Endpoint,
		client:   client,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}

	if rv.endpoint == "" {
		rv.endpoint = DefaultOverpassEndpoint
	}

	if rv.cache == nil {
		rv.cache = NewNoopCache()
	}

	if rv.cacheTTL <= 0 {
		rv.cacheTTL = DefaultCacheTTL
	}

	return rv
}
