package geolib_test

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/9seconds/geointel/geolib"
	"github.com/stretchr/testify/mock"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Lookup(ctx context.Context, ip net.IP) (*geolib.Record, error) {
	args := m.Called(ctx, ip)

	record, _ := args.Get(0).(*geolib.Record)

	return record, args.Error(1)
}

func (m *ProviderMock) Name() string {
	return m.Called().String(0)
}

type DNSClientMock struct {
	mock.Mock
}

func (m *DNSClientMock) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	args := m.Called(ctx, name)

	ips, _ := args.Get(0).([]net.IP)

	return ips, args.Error(1)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip net.IP, name string, err error) {
	m.Called(ip, name, err)
}

func (m *LoggerMock) ReputationError(ip net.IP, zone string, err error) {
	m.Called(ip, zone, err)
}

func (m *LoggerMock) CacheError(key string, err error) {
	m.Called(key, err)
}

func (m *LoggerMock) InternalError(msg string, err error) {
	m.Called(msg, err)
}

func newLoggerMock() *LoggerMock {
	rv := &LoggerMock{}

	rv.On("LookupError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	rv.On("ReputationError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	rv.On("CacheError", mock.Anything, mock.Anything).Maybe()
	rv.On("InternalError", mock.Anything, mock.Anything).Maybe()

	return rv
}

// CacheMock is a synchronous map-based cache which counts requests.
type CacheMock struct {
	mutex sync.Mutex
	data  map[string][]byte
	gets  int
	sets  int
}

func (c *CacheMock) Get(_ context.Context, key string, dst interface{}) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.gets++

	value, ok := c.data[key]
	if !ok {
		return false
	}

	return json.Unmarshal(value, dst) == nil
}

func (c *CacheMock) Set(_ context.Context, key string, value interface{}, _ time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sets++

	encoded, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}

	c.data[key] = encoded
}

func (c *CacheMock) Has(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.data[key]

	return ok
}

func (c *CacheMock) Counters() (int, int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.gets, c.sets
}

func newCacheMock() *CacheMock {
	return &CacheMock{
		data: map[string][]byte{},
	}
}

func strPtr(value string) *string {
	return &value
}

func floatPtr(value float64) *float64 {
	return &value
}
