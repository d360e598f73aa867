package providers

import (
	"context"
	"net"
	"net/url"
	"strconv"

	"github.com/9seconds/geointel/geolib"
)

const ipregistryFreeKey = "tryout"

type ipregistryResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`

	Location struct {
		Country struct {
			Name string `json:"name"`
			Code string `json:"code"`
		} `json:"country"`
		Region struct {
			Name string `json:"name"`
		} `json:"region"`
		City      string   `json:"city"`
		Postal    string   `json:"postal"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Language  struct {
			Name string `json:"name"`
		} `json:"language"`
	} `json:"location"`
	Currency struct {
		Code string `json:"code"`
	} `json:"currency"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	Connection struct {
		ASN          int64  `json:"asn"`
		Organization string `json:"organization"`
		Route        string `json:"route"`
		Type         string `json:"type"`
	} `json:"connection"`
	TimeZone struct {
		ID     string `json:"id"`
		Offset *int   `json:"offset"`
	} `json:"time_zone"`
	Security struct {
		IsProxy         bool `json:"is_proxy"`
		IsVPN           bool `json:"is_vpn"`
		IsTor           bool `json:"is_tor"`
		IsCloudProvider bool `json:"is_cloud_provider"`
	} `json:"security"`
}

func (i *ipregistryResponse) normalize() *geolib.Record {
	record := &geolib.Record{
		CountryName: geolib.OptionalString(i.Location.Country.Name),
		CountryCode: geolib.OptionalString(i.Location.Country.Code),
		Region:      geolib.OptionalString(i.Location.Region.Name),
		City:        geolib.OptionalString(i.Location.City),
		Postal:      geolib.OptionalString(i.Location.Postal),
		Org:         geolib.OptionalString(i.Company.Name),
		ASNName:     geolib.OptionalString(i.Connection.Organization),
		ASNRoutes:   geolib.OptionalString(i.Connection.Route),
		Timezone:    geolib.OptionalString(i.TimeZone.ID),
		Currency:    geolib.OptionalString(i.Currency.Code),
		Languages:   geolib.OptionalString(i.Location.Language.Name),
		Proxy:       i.Security.IsProxy || i.Security.IsVPN || i.Security.IsTor,
		Hosting:     i.Security.IsCloudProvider || i.Connection.Type == "hosting",
	}

	record.Latitude, record.Longitude = geolib.OptionalCoordinates(
		i.Location.Latitude, i.Location.Longitude)

	if record.Org == nil {
		record.Org = record.ASNName
	}

	if i.Connection.ASN > 0 {
		record.ASN = geolib.OptionalString("AS" + strconv.FormatInt(i.Connection.ASN, 10))
	}

	if i.TimeZone.Offset != nil {
		record.TimezoneOffset = geolib.OptionalString(geolib.FormatUTCOffset(*i.TimeZone.Offset))
	}

	return record
}

type ipregistryProvider struct {
	client geolib.HTTPClient
	apiKey string
}

func (i ipregistryProvider) Name() string {
	return NameIPRegistry
}

func (i ipregistryProvider) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	query := url.Values{}
	query.Set("key", i.apiKey)

	endpoint := url.URL{
		Scheme:   "https",
		Host:     "api.ipregistry.co",
		Path:     "/" + ip.String(),
		RawQuery: query.Encode(),
	}

	resp := ipregistryResponse{}

	if err := fetchJSON(ctx, i.client, NameIPRegistry, endpoint.String(), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Code != "" {
		return nil, providerError(NameIPRegistry, "failed response: code=%s, message=%s",
			resp.Code, resp.Message)
	}

	if resp.Error != nil {
		return nil, providerError(NameIPRegistry, "failed response: code=%s, message=%s",
			resp.Error.Code, resp.Error.Message)
	}

	return resp.normalize(), nil
}

// NewIPRegistry returns a provider for ipregistry.co. If api_key
// parameter is empty, a free tryout key is used.
func NewIPRegistry(client geolib.HTTPClient, parameters map[string]string) geolib.Provider {
	apiKey := parameters["api_key"]
	if apiKey == "" {
		apiKey = ipregistryFreeKey
	}

	return ipregistryProvider{
		client: client,
		apiKey: apiKey,
	}
}
