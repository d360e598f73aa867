package providers

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/9seconds/geointel/geolib"
)

type ipstackResponse struct {
	Error struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`

	CountryName string   `json:"country_name"`
	CountryCode string   `json:"country_code"`
	RegionName  string   `json:"region_name"`
	City        string   `json:"city"`
	Zip         string   `json:"zip"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Location    struct {
		Languages []struct {
			Name string `json:"name"`
		} `json:"languages"`
	} `json:"location"`
	TimeZone struct {
		ID        string `json:"id"`
		GMTOffset *int   `json:"gmt_offset"`
	} `json:"time_zone"`
	Currency struct {
		Code string `json:"code"`
	} `json:"currency"`
	Connection struct {
		ASN int64  `json:"asn"`
		ISP string `json:"isp"`
	} `json:"connection"`
}

func (i *ipstackResponse) normalize() *geolib.Record {
	record := &geolib.Record{
		CountryName: geolib.OptionalString(i.CountryName),
		CountryCode: geolib.OptionalString(i.CountryCode),
		Region:      geolib.OptionalString(i.RegionName),
		City:        geolib.OptionalString(i.City),
		Postal:      geolib.OptionalString(i.Zip),
		Org:         geolib.OptionalString(i.Connection.ISP),
		ASNName:     geolib.OptionalString(i.Connection.ISP),
		Timezone:    geolib.OptionalString(i.TimeZone.ID),
		Currency:    geolib.OptionalString(i.Currency.Code),
	}

	record.Latitude, record.Longitude = geolib.OptionalCoordinates(i.Latitude, i.Longitude)

	if i.Connection.ASN > 0 {
		record.ASN = geolib.OptionalString("AS" + strconv.FormatInt(i.Connection.ASN, 10))
	}

	if i.TimeZone.GMTOffset != nil {
		record.TimezoneOffset = geolib.OptionalString(geolib.FormatUTCOffset(*i.TimeZone.GMTOffset))
	}

	languages := make([]string, 0, len(i.Location.Languages))

	for _, v := range i.Location.Languages {
		if v.Name != "" {
			languages = append(languages, v.Name)
		}
	}

	record.Languages = geolib.OptionalString(strings.Join(languages, ", "))

	return record
}

type ipstackProvider struct {
	client    geolib.HTTPClient
	authToken string
}

func (i ipstackProvider) Name() string {
	return NameIPStack
}

func (i ipstackProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	resp := ipstackResponse{}

	if err := fetchJSON(ctx, i.client, NameIPStack, i.buildURL(ip), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Error.Code != 0 {
		return nil, providerError(NameIPStack, "failed response: code=%d, type=%s, info=%s",
			resp.Error.Code, resp.Error.Type, resp.Error.Info)
	}

	return resp.normalize(), nil
}

func (i ipstackProvider) buildURL(ip net.IP) string {
	getQuery := url.Values{}

	getQuery.Set("access_key", i.authToken)
	getQuery.Set("output", "json")
	getQuery.Set("language", "en")

	u := url.URL{
		Scheme:   "https",
		Host:     "api.ipstack.com",
		Path:     "/" + ip.String(),
		RawQuery: getQuery.Encode(),
	}

	return u.String()
}

// NewIPStack returns a provider for ipstack.com. This provider requires
// auth_token parameter.
func NewIPStack(client geolib.HTTPClient, parameters map[string]string) (geolib.Provider, error) {
	authToken := parameters["auth_token"]
	if authToken == "" {
		return nil, ErrAuthTokenIsRequired
	}

	return ipstackProvider{
		client:    client,
		authToken: authToken,
	}, nil
}
