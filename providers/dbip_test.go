package providers_test

import (
	"net"
	"net/http"
	"testing"

	"github.com/9seconds/geointel/providers"
	"github.com/stretchr/testify/suite"
)

type MockedDBIPTestSuite struct {
	MockedProviderTestSuite
}

func (suite *MockedDBIPTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewDBIP(suite.http)
	suite.ip = net.ParseIP("81.2.69.142")
	suite.url = "https://api.db-ip.com/v2/free/81.2.69.142"
}

func (suite *MockedDBIPTestSuite) TestName() {
	suite.Equal(providers.NameDBIP, suite.prov.Name())
}

func (suite *MockedDBIPTestSuite) TestErrorField() {
	suite.respond(http.StatusOK, `{"errorCode": "OVER_QUERY_LIMIT", "error": "limit reached"}`)

	_, err := suite.lookup()

	suite.assertProviderError(err, 0)
	suite.Contains(err.Error(), "OVER_QUERY_LIMIT")
}

func (suite *MockedDBIPTestSuite) TestLookupOk() {
	suite.respond(http.StatusOK, `{
  "ipAddress": "81.2.69.142",
  "continentCode": "EU",
  "continentName": "Europe",
  "countryCode": "GB",
  "countryName": "United Kingdom",
  "stateProv": "England",
  "city": "London"
}`)

	record, err := suite.lookup()

	suite.Require().NoError(err)
	suite.Equal("GB", *record.CountryCode)
	suite.Equal("United Kingdom", *record.CountryName)
	suite.Equal("England", *record.Region)
	suite.Equal("London", *record.City)
	suite.False(record.Geolocated())
}

type IntegrationDBIPTestSuite struct {
	IntegrationProviderTestSuite
}

func (suite *IntegrationDBIPTestSuite) SetupTest() {
	suite.IntegrationProviderTestSuite.SetupTest()

	suite.prov = providers.NewDBIP(suite.http)
}

func TestDBIP(t *testing.T) {
	suite.Run(t, &MockedDBIPTestSuite{})
}

func TestIntegrationDBIP(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipped because of the short mode")
		return
	}

	suite.Run(t, &IntegrationDBIPTestSuite{})
}
