package providers

import (
	"context"
	"net"

	"github.com/9seconds/geointel/geolib"
)

type ipapiResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`

	CountryName string   `json:"country_name"`
	CountryCode string   `json:"country_code"`
	Region      string   `json:"region"`
	City        string   `json:"city"`
	Postal      string   `json:"postal"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Org         string   `json:"org"`
	ASN         string   `json:"asn"`
	Network     string   `json:"network"`
	Timezone    string   `json:"timezone"`
	UTCOffset   string   `json:"utc_offset"`
	Currency    string   `json:"currency"`
	Languages   string   `json:"languages"`
}

func (i *ipapiResponse) normalize() *geolib.Record {
	record := &geolib.Record{
		CountryName:    geolib.OptionalString(i.CountryName),
		CountryCode:    geolib.OptionalString(i.CountryCode),
		Region:         geolib.OptionalString(i.Region),
		City:           geolib.OptionalString(i.City),
		Postal:         geolib.OptionalString(i.Postal),
		Org:            geolib.OptionalString(i.Org),
		ASN:            geolib.OptionalString(i.ASN),
		ASNRoutes:      geolib.OptionalString(i.Network),
		CIDR:           geolib.OptionalString(i.Network),
		Timezone:       geolib.OptionalString(i.Timezone),
		TimezoneOffset: geolib.OptionalString(geolib.ParseUTCOffset(i.UTCOffset)),
		Currency:       geolib.OptionalString(i.Currency),
		Languages:      geolib.OptionalString(i.Languages),
	}

	record.Latitude, record.Longitude = geolib.OptionalCoordinates(i.Latitude, i.Longitude)

	// ipapi.co reports org name of the AS
	record.ASNName = record.Org

	return record
}

type ipapiProvider struct {
	client geolib.HTTPClient
}

func (i ipapiProvider) Name() string {
	return NameIPAPI
}

func (i ipapiProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	resp := ipapiResponse{}
	url := "https://ipapi.co/" + ip.String() + "/json/"

	if err := fetchJSON(ctx, i.client, NameIPAPI, url, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Error {
		return nil, providerError(NameIPAPI, "failed response: %s", resp.Reason)
	}

	return resp.normalize(), nil
}

// NewIPAPI returns a provider for ipapi.co.
func NewIPAPI(client geolib.HTTPClient) geolib.Provider {
	return ipapiProvider{
		client: client,
	}
}
