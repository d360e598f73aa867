package providers_test

import (
	"net"
	"net/http"
	"testing"

	"github.com/9seconds/geointel/providers"
	"github.com/stretchr/testify/suite"
)

type MockedIPRegistryTestSuite struct {
	MockedProviderTestSuite
}

func (suite *MockedIPRegistryTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPRegistry(suite.http, map[string]string{})
	suite.ip = net.ParseIP("8.8.8.8")
	suite.url = "https://api.ipregistry.co/8.8.8.8"
}

func (suite *MockedIPRegistryTestSuite) TestName() {
	suite.Equal(providers.NameIPRegistry, suite.prov.Name())
}

func (suite *MockedIPRegistryTestSuite) TestErrorField() {
	suite.respond(http.StatusOK, `{"code": "INVALID_API_KEY", "message": "bad key"}`)

	_, err := suite.lookup()

	suite.assertProviderError(err, 0)
	suite.Contains(err.Error(), "INVALID_API_KEY")
}

func (suite *MockedIPRegistryTestSuite) TestErrorObject() {
	suite.respond(http.StatusOK, `{"error": {"code": "TOO_MANY_REQUESTS", "message": "slow down"}}`)

	_, err := suite.lookup()

	suite.assertProviderError(err, 0)
	suite.Contains(err.Error(), "TOO_MANY_REQUESTS")
	suite.Contains(err.Error(), "slow down")
}

func (suite *MockedIPRegistryTestSuite) TestErrorString() {
	suite.respond(http.StatusOK, `{"error": "quota exceeded"}`)

	_, err := suite.lookup()

	suite.assertProviderError(err, 0)
}

func (suite *MockedIPRegistryTestSuite) TestLookupOk() {
	suite.respond(http.StatusOK, `{
  "ip": "8.8.8.8",
  "company": {"name": "Google LLC", "type": "business"},
  "connection": {
    "asn": 15169,
    "organization": "Google LLC",
    "route": "8.8.8.0/24",
    "type": "hosting"
  },
  "currency": {"code": "USD"},
  "location": {
    "city": "Mountain View",
    "country": {"code": "US", "name": "United States"},
    "language": {"name": "English"},
    "latitude": 37.42240,
    "longitude": -122.08421,
    "postal": "94043",
    "region": {"name": "California"}
  },
  "security": {"is_proxy": false, "is_vpn": false, "is_cloud_provider": true},
  "time_zone": {"id": "America/Los_Angeles", "offset": -25200}
}`)

	record, err := suite.lookup()

	suite.Require().NoError(err)
	suite.Equal("United States", *record.CountryName)
	suite.Equal("US", *record.CountryCode)
	suite.Equal("California", *record.Region)
	suite.Equal("Mountain View", *record.City)
	suite.Equal("94043", *record.Postal)
	suite.InDelta(37.4224, *record.Latitude, 0.0001)
	suite.InDelta(-122.08421, *record.Longitude, 0.0001)
	suite.Equal("AS15169", *record.ASN)
	suite.Equal("Google LLC", *record.ASNName)
	suite.Equal("Google LLC", *record.Org)
	suite.Equal("8.8.8.0/24", *record.ASNRoutes)
	suite.Equal("America/Los_Angeles", *record.Timezone)
	suite.Equal("-07:00", *record.TimezoneOffset)
	suite.Equal("USD", *record.Currency)
	suite.Equal("English", *record.Languages)
	suite.True(record.Hosting)
	suite.False(record.Proxy)
}

func (suite *MockedIPRegistryTestSuite) TestLookupSparse() {
	suite.respond(http.StatusOK, `{"ip": "8.8.8.8", "location": {"latitude": 37.4}}`)

	record, err := suite.lookup()

	suite.Require().NoError(err)
	suite.Nil(record.CountryCode)
	suite.Nil(record.Latitude)
	suite.Nil(record.Longitude)
	suite.Nil(record.ASN)
	suite.False(record.Geolocated())
}

type IntegrationIPRegistryTestSuite struct {
	IntegrationProviderTestSuite
}

func (suite *IntegrationIPRegistryTestSuite) SetupTest() {
	suite.IntegrationProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPRegistry(suite.http, map[string]string{})
}

func TestIPRegistry(t *testing.T) {
	suite.Run(t, &MockedIPRegistryTestSuite{})
}

func TestIntegrationIPRegistry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipped because of the short mode")
		return
	}

	suite.Run(t, &IntegrationIPRegistryTestSuite{})
}
