package providers

import (
	"context"
	"net"

	"github.com/9seconds/geointel/geolib"
)

type dbipResponse struct {
	ErrorCode string `json:"errorCode"`
	Error     string `json:"error"`

	CountryName string `json:"countryName"`
	CountryCode string `json:"countryCode"`
	StateProv   string `json:"stateProv"`
	City        string `json:"city"`
}

func (d *dbipResponse) normalize() *geolib.Record {
	return &geolib.Record{
		CountryName: geolib.OptionalString(d.CountryName),
		CountryCode: geolib.OptionalString(d.CountryCode),
		Region:      geolib.OptionalString(d.StateProv),
		City:        geolib.OptionalString(d.City),
	}
}

type dbipProvider struct {
	client geolib.HTTPClient
}

func (d dbipProvider) Name() string {
	return NameDBIP
}

func (d dbipProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	resp := dbipResponse{}
	url := "https://api.db-ip.com/v2/free/" + ip.String()

	if err := fetchJSON(ctx, d.client, NameDBIP, url, nil, &resp); err != nil {
		return nil, err
	}

	if resp.ErrorCode != "" || resp.Error != "" {
		return nil, providerError(NameDBIP, "failed response: code=%s, error=%s",
			resp.ErrorCode, resp.Error)
	}

	return resp.normalize(), nil
}

// NewDBIP returns a provider for a free API of db-ip.com. This API
// does not report coordinates.
func NewDBIP(client geolib.HTTPClient) geolib.Provider {
	return dbipProvider{
		client: client,
	}
}
