package providers_test

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/9seconds/geointel/geolib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite

	http geolib.HTTPClient
}

func (suite *ProviderTestSuite) SetupTest() {
	suite.http = geolib.NewHTTPClient(&http.Client{},
		"test-agent",
		time.Millisecond,
		100,
		100,
		time.Millisecond,
		time.Millisecond)
}

type MockedProviderTestSuite struct {
	ProviderTestSuite

	prov geolib.Provider
	ip   net.IP
	url  string
}

func (suite *MockedProviderTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MockedProviderTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MockedProviderTestSuite) TearDownTest() {
	httpmock.Reset()
}

func (suite *MockedProviderTestSuite) respond(statusCode int, body string) {
	httpmock.RegisterResponder("GET", suite.url,
		httpmock.NewStringResponder(statusCode, body))
}

func (suite *MockedProviderTestSuite) lookup() (*geolib.Record, error) {
	return suite.prov.Lookup(context.Background(), suite.ip)
}

func (suite *MockedProviderTestSuite) assertProviderError(err error, statusCode int) {
	providerErr := &geolib.ProviderError{}

	suite.Require().ErrorAs(err, &providerErr)
	suite.Equal(suite.prov.Name(), providerErr.Provider)
	suite.Equal(statusCode, providerErr.StatusCode)
}

func (suite *MockedProviderTestSuite) TestLookupClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := suite.prov.Lookup(ctx, suite.ip)

	suite.Error(err)
}

func (suite *MockedProviderTestSuite) TestLookupFailed() {
	suite.respond(http.StatusInternalServerError, "")

	_, err := suite.lookup()

	suite.assertProviderError(err, http.StatusInternalServerError)
}

func (suite *MockedProviderTestSuite) TestLookupRateLimited() {
	suite.respond(http.StatusTooManyRequests, `{}`)

	_, err := suite.lookup()

	suite.assertProviderError(err, http.StatusTooManyRequests)
}

func (suite *MockedProviderTestSuite) TestLookupBadJSON() {
	suite.respond(http.StatusOK, `{[`)

	_, err := suite.lookup()

	suite.assertProviderError(err, 0)
}

type IntegrationProviderTestSuite struct {
	ProviderTestSuite

	prov geolib.Provider
}

func (suite *IntegrationProviderTestSuite) TestLookup() {
	result, err := suite.prov.Lookup(context.Background(),
		net.ParseIP("8.8.8.8"))

	suite.Require().NoError(err)
	suite.Require().NotNil(result.CountryCode)
	suite.Equal("US", *result.CountryCode)
}
