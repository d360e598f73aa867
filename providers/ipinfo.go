package providers

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/9seconds/geointel/geolib"
)

type ipinfoResponse struct {
	Error json.RawMessage `json:"error"`
	Bogon bool            `json:"bogon"`

	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Postal   string `json:"postal"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Timezone string `json:"timezone"`
}

// errorMessage returns a message from error field. This field is
// either a string or an object with title and message.
func (i *ipinfoResponse) errorMessage() string {
	if len(i.Error) == 0 || string(i.Error) == "null" {
		return ""
	}

	var message string
	if err := json.Unmarshal(i.Error, &message); err == nil {
		return message
	}

	obj := struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}{}

	if err := json.Unmarshal(i.Error, &obj); err == nil && (obj.Title != "" || obj.Message != "") {
		return strings.TrimSpace(obj.Title + " " + obj.Message)
	}

	return string(i.Error)
}

func (i *ipinfoResponse) normalize() *geolib.Record {
	record := &geolib.Record{
		CountryCode: geolib.OptionalString(i.Country),
		Region:      geolib.OptionalString(i.Region),
		City:        geolib.OptionalString(i.City),
		Postal:      geolib.OptionalString(i.Postal),
		Org:         geolib.OptionalString(i.Org),
		Timezone:    geolib.OptionalString(i.Timezone),
	}

	if chunks := strings.SplitN(i.Loc, ",", 2); len(chunks) == 2 {
		record.Latitude, record.Longitude = geolib.ParseCoordinates(chunks[0], chunks[1])
	}

	return record
}

type ipinfoProvider struct {
	client    geolib.HTTPClient
	authToken string
}

func (i ipinfoProvider) Name() string {
	return NameIPInfo
}

func (i ipinfoProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	var headers map[string]string

	if i.authToken != "" {
		headers = map[string]string{
			"Authorization": "Bearer " + i.authToken,
		}
	}

	resp := ipinfoResponse{}
	url := "https://ipinfo.io/" + ip.String() + "/json"

	if err := fetchJSON(ctx, i.client, NameIPInfo, url, headers, &resp); err != nil {
		return nil, err
	}

	if message := resp.errorMessage(); message != "" {
		return nil, providerError(NameIPInfo, "failed response: %s", message)
	}

	if resp.Bogon {
		return nil, providerError(NameIPInfo, "bogon ip address")
	}

	return resp.normalize(), nil
}

// NewIPInfo returns a provider for ipinfo.io. auth_token parameter is
// optional.
func NewIPInfo(client geolib.HTTPClient, parameters map[string]string) geolib.Provider {
	return ipinfoProvider{
		client:    client,
		authToken: parameters["auth_token"],
	}
}
