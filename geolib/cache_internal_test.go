package geolib

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryCacheTestSuite struct {
	suite.Suite

	cache memoryCache
}

func (suite *MemoryCacheTestSuite) SetupTest() {
	suite.cache = NewMemoryCache(100, nil).(memoryCache)
}

func (suite *MemoryCacheTestSuite) TearDownTest() {
	suite.cache.cache.Close()
}

func (suite *MemoryCacheTestSuite) TestMiss() {
	rv := &Record{}

	suite.False(suite.cache.Get(context.Background(), "ip:1.1.1.1", rv))
}

func (suite *MemoryCacheTestSuite) TestCopy() {
	city := "Berlin"
	record := &Record{IP: "1.1.1.1", City: &city}

	suite.cache.Set(context.Background(), "ip:1.1.1.1", record, time.Minute)

	city = "Paris"

	rv := &Record{}

	suite.True(suite.cache.Get(context.Background(), "ip:1.1.1.1", rv))
	suite.Equal("1.1.1.1", rv.IP)
	suite.Equal("Berlin", *rv.City)
}

func (suite *MemoryCacheTestSuite) TestExpired() {
	suite.cache.Set(context.Background(), "reputation:1.1.1.1", FallbackReputation(), time.Millisecond)

	time.Sleep(10 * time.Millisecond)

	rv := ReputationResult{}

	suite.False(suite.cache.Get(context.Background(), "reputation:1.1.1.1", &rv))
}

func (suite *MemoryCacheTestSuite) TestWrongType() {
	suite.cache.Set(context.Background(), "poi:1:1:1", []POI{{Name: "x"}}, time.Minute)

	rv := ReputationResult{}

	suite.False(suite.cache.Get(context.Background(), "poi:1:1:1", &rv))
}

func (suite *MemoryCacheTestSuite) TestGetRightAfterSet() {
	for i := 0; i < 50; i++ {
		key := "reputation:10.0.0." + strconv.Itoa(i)

		suite.cache.Set(context.Background(), key, FallbackReputation(), time.Minute)

		rv := ReputationResult{}

		suite.True(suite.cache.Get(context.Background(), key, &rv), key)
		suite.Equal(FallbackReputationScore, rv.Score)
	}
}

func TestMemoryCache(t *testing.T) {
	suite.Run(t, &MemoryCacheTestSuite{})
}

type NoopCacheTestSuite struct {
	suite.Suite
}

func (suite *NoopCacheTestSuite) TestNothingIsStored() {
	cache := NewNoopCache()

	cache.Set(context.Background(), "key", 1, time.Minute)

	var rv int

	suite.False(cache.Get(context.Background(), "key", &rv))
}

func TestNoopCache(t *testing.T) {
	suite.Run(t, &NoopCacheTestSuite{})
}
