package geolib_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/9seconds/geointel/geolib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

const poiTestEndpoint = "https://overpass.example.com/api/interpreter"

type POITestSuite struct {
	suite.Suite

	cache  *CacheMock
	client *geolib.POIClient
	query  string
}

func (suite *POITestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *POITestSuite) SetupTest() {
	httpmock.Reset()

	suite.query = ""
	suite.cache = newCacheMock()
	suite.client = geolib.NewPOIClient(&http.Client{}, geolib.POIOpts{
		Endpoint: poiTestEndpoint,
		Cache:    suite.cache,
	})
}

func (suite *POITestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *POITestSuite) respond(body string) {
	httpmock.RegisterResponder(http.MethodPost, poiTestEndpoint,
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				return nil, err
			}

			suite.query = req.PostForm.Get("data")

			return httpmock.NewStringResponse(http.StatusOK, body), nil
		})
}

func (suite *POITestSuite) TestNearby() {
	suite.respond(`{
  "elements": [
    {"type": "node", "lat": 1.5, "lon": 2.5, "tags": {"amenity": "police", "name": "Precinct 1"}},
    {"type": "way", "center": {"lat": 1.6, "lon": 2.6}, "tags": {"amenity": "hospital"}}
  ]
}`)

	pois, err := suite.client.Nearby(context.Background(), 1.5, 2.5, 500)

	suite.NoError(err)
	suite.Equal([]geolib.POI{
		{Name: "Precinct 1", Type: "police", Lat: 1.5, Lng: 2.5},
		{Name: "Hospital", Type: "hospital", Lat: 1.6, Lng: 2.6},
	}, pois)
	suite.Contains(suite.query, "[out:json]")
	suite.Contains(suite.query, `node["amenity"="school"](around:500,1.5,2.5);`)
	suite.True(suite.cache.Has("poi:1.5:2.5:500"))
}

func (suite *POITestSuite) TestRadiusIsCapped() {
	suite.respond(`{"elements": []}`)

	pois, err := suite.client.Nearby(context.Background(), 10, 20, 1000000)

	suite.NoError(err)
	suite.Empty(pois)
	suite.NotNil(pois)
	suite.Contains(suite.query, "around:10000,")
	suite.True(suite.cache.Has("poi:10:20:10000"))
}

func (suite *POITestSuite) TestDefaultRadius() {
	suite.respond(`{"elements": []}`)

	_, err := suite.client.Nearby(context.Background(), 10, 20, 0)

	suite.NoError(err)
	suite.Contains(suite.query, "around:3000,")
}

func (suite *POITestSuite) TestCached() {
	suite.respond(`{"elements": [{"lat": 1, "lon": 2, "tags": {"amenity": "school", "name": "X"}}]}`)

	first, err := suite.client.Nearby(context.Background(), 1, 2, 100)

	suite.NoError(err)

	second, err := suite.client.Nearby(context.Background(), 1, 2, 100)

	suite.NoError(err)
	suite.Equal(first, second)
	suite.Equal(1, httpmock.GetTotalCallCount())
}

func (suite *POITestSuite) TestBadResponse() {
	suite.respond(`<html>`)

	_, err := suite.client.Nearby(context.Background(), 1, 2, 100)

	suite.Error(err)

	_, sets := suite.cache.Counters()

	suite.Equal(0, sets)
}

func TestPOI(t *testing.T) {
	suite.Run(t, &POITestSuite{})
}
