package providers

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/9seconds/geointel/geolib"
)

type geojsResponse struct {
	Country          string      `json:"country"`
	CountryCode      string      `json:"country_code"`
	Region           string      `json:"region"`
	City             string      `json:"city"`
	Latitude         string      `json:"latitude"`
	Longitude        string      `json:"longitude"`
	Organization     string      `json:"organization"`
	OrganizationName string      `json:"organization_name"`
	ASN              json.Number `json:"asn"`
	Timezone         string      `json:"timezone"`
}

func (g *geojsResponse) normalize() *geolib.Record {
	record := &geolib.Record{
		CountryName: geolib.OptionalString(g.Country),
		CountryCode: geolib.OptionalString(g.CountryCode),
		Region:      geolib.OptionalString(g.Region),
		City:        geolib.OptionalString(g.City),
		Org:         geolib.OptionalString(g.OrganizationName),
		ASNName:     geolib.OptionalString(g.OrganizationName),
		Timezone:    geolib.OptionalString(g.Timezone),
	}

	// organization is 'AS15169 Google LLC'
	if record.Org == nil {
		record.Org = geolib.OptionalString(g.Organization)
	}

	if asn := strings.TrimSpace(g.ASN.String()); asn != "" && asn != "0" {
		record.ASN = geolib.OptionalString("AS" + asn)
	}

	record.Latitude, record.Longitude = geolib.ParseCoordinates(g.Latitude, g.Longitude)

	return record
}

type geojsProvider struct {
	client geolib.HTTPClient
}

func (g geojsProvider) Name() string {
	return NameGeoJS
}

func (g geojsProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	resp := geojsResponse{}
	url := "https://get.geojs.io/v1/ip/geo/" + ip.String() + ".json"

	if err := fetchJSON(ctx, g.client, NameGeoJS, url, nil, &resp); err != nil {
		return nil, err
	}

	return resp.normalize(), nil
}

// NewGeoJS returns a provider for geojs.io.
func NewGeoJS(client geolib.HTTPClient) geolib.Provider {
	return geojsProvider{
		client: client,
	}
}
