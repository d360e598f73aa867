package providers

import (
	"context"
	"net"
	"net/url"
	"strconv"

	"github.com/9seconds/geointel/geolib"
)

type keycdnResponse struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Data        struct {
		Geo struct {
			CountryName string   `json:"country_name"`
			CountryCode string   `json:"country_code"`
			RegionName  string   `json:"region_name"`
			City        string   `json:"city"`
			PostalCode  string   `json:"postal_code"`
			Latitude    *float64 `json:"latitude"`
			Longitude   *float64 `json:"longitude"`
			ASN         int64    `json:"asn"`
			ISP         string   `json:"isp"`
			Timezone    string   `json:"timezone"`
		} `json:"geo"`
	} `json:"data"`
}

func (k *keycdnResponse) normalize() *geolib.Record {
	geo := k.Data.Geo
	record := &geolib.Record{
		CountryName: geolib.OptionalString(geo.CountryName),
		CountryCode: geolib.OptionalString(geo.CountryCode),
		Region:      geolib.OptionalString(geo.RegionName),
		City:        geolib.OptionalString(geo.City),
		Postal:      geolib.OptionalString(geo.PostalCode),
		Org:         geolib.OptionalString(geo.ISP),
		ASNName:     geolib.OptionalString(geo.ISP),
		Timezone:    geolib.OptionalString(geo.Timezone),
	}

	record.Latitude, record.Longitude = geolib.OptionalCoordinates(geo.Latitude, geo.Longitude)

	if geo.ASN > 0 {
		record.ASN = geolib.OptionalString("AS" + strconv.FormatInt(geo.ASN, 10))
	}

	return record
}

type keycdnProvider struct {
	client geolib.HTTPClient
}

func (k keycdnProvider) Name() string {
	return NameKeyCDN
}

func (k keycdnProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	resp := keycdnResponse{}
	endpoint := "https://tools.keycdn.com/geo.json?host=" + url.QueryEscape(ip.String())

	// keycdn rejects requests without this header
	headers := map[string]string{
		"Referer": "https://tools.keycdn.com",
	}

	if err := fetchJSON(ctx, k.client, NameKeyCDN, endpoint, headers, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "success" {
		return nil, providerError(NameKeyCDN, "failed to geolocate: %s", resp.Description)
	}

	return resp.normalize(), nil
}

// NewKeyCDN returns a provider for tools.keycdn.com.
func NewKeyCDN(client geolib.HTTPClient) geolib.Provider {
	return keycdnProvider{
		client: client,
	}
}
