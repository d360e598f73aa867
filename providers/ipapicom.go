package providers

import (
	"context"
	"net"
	"net/url"
	"strings"

	"github.com/9seconds/geointel/geolib"
)

var ipapicomFields = strings.Join([]string{
	"status",
	"message",
	"country",
	"countryCode",
	"regionName",
	"city",
	"zip",
	"lat",
	"lon",
	"timezone",
	"offset",
	"currency",
	"isp",
	"org",
	"as",
	"asname",
	"mobile",
	"proxy",
	"hosting",
}, ",")

type ipapicomResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	RegionName  string   `json:"regionName"`
	City        string   `json:"city"`
	Zip         string   `json:"zip"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Timezone    string   `json:"timezone"`
	Offset      *int     `json:"offset"`
	Currency    string   `json:"currency"`
	ISP         string   `json:"isp"`
	Org         string   `json:"org"`
	AS          string   `json:"as"`
	ASName      string   `json:"asname"`
	Mobile      bool     `json:"mobile"`
	Proxy       bool     `json:"proxy"`
	Hosting     bool     `json:"hosting"`
}

func (i *ipapicomResponse) normalize() *geolib.Record {
	record := &geolib.Record{
		CountryName: geolib.OptionalString(i.Country),
		CountryCode: geolib.OptionalString(i.CountryCode),
		Region:      geolib.OptionalString(i.RegionName),
		City:        geolib.OptionalString(i.City),
		Postal:      geolib.OptionalString(i.Zip),
		Org:         geolib.OptionalString(i.Org),
		ASN:         geolib.OptionalString(i.AS),
		ASNName:     geolib.OptionalString(i.ASName),
		Timezone:    geolib.OptionalString(i.Timezone),
		Currency:    geolib.OptionalString(i.Currency),
		Proxy:       i.Proxy,
		Hosting:     i.Hosting,
		Mobile:      i.Mobile,
	}

	if record.Org == nil {
		record.Org = geolib.OptionalString(i.ISP)
	}

	record.Latitude, record.Longitude = geolib.OptionalCoordinates(i.Lat, i.Lon)

	if i.Offset != nil {
		record.TimezoneOffset = geolib.OptionalString(geolib.FormatUTCOffset(*i.Offset))
	}

	return record
}

type ipapicomProvider struct {
	client geolib.HTTPClient
}

func (i ipapicomProvider) Name() string {
	return NameIPAPICom
}

func (i ipapicomProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	query := url.Values{}
	query.Set("fields", ipapicomFields)

	// free tier is available only via plain http
	endpoint := url.URL{
		Scheme:   "http",
		Host:     "ip-api.com",
		Path:     "/json/" + ip.String(),
		RawQuery: query.Encode(),
	}

	resp := ipapicomResponse{}

	if err := fetchJSON(ctx, i.client, NameIPAPICom, endpoint.String(), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "success" {
		return nil, providerError(NameIPAPICom, "failed response: status=%s, message=%s",
			resp.Status, resp.Message)
	}

	return resp.normalize(), nil
}

// NewIPAPICom returns a provider for ip-api.com.
func NewIPAPICom(client geolib.HTTPClient) geolib.Provider {
	return ipapicomProvider{
		client: client,
	}
}
