package geolib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CircuitBreakerTestSuite struct {
	suite.Suite

	cb  *circuitBreaker
	now time.Time
}

func (suite *CircuitBreakerTestSuite) SetupTest() {
	suite.now = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.cb = newCircuitBreaker(2, time.Minute, 10*time.Second)
	suite.cb.now = func() time.Time {
		return suite.now
	}
}

func (suite *CircuitBreakerTestSuite) fail() {
	suite.True(suite.cb.Allow())
	suite.cb.Done(false)
}

func (suite *CircuitBreakerTestSuite) TestManyExecuted() {
	for i := 0; i < 10; i++ {
		suite.True(suite.cb.Allow())
		suite.cb.Done(true)
	}

	suite.Equal(circuitBreakerStateClosed, suite.cb.state)
}

func (suite *CircuitBreakerTestSuite) TestOpen() {
	suite.fail()
	suite.Equal(circuitBreakerStateClosed, suite.cb.state)

	suite.fail()
	suite.Equal(circuitBreakerStateOpened, suite.cb.state)
	suite.False(suite.cb.Allow())
}

func (suite *CircuitBreakerTestSuite) TestFailuresWindow() {
	suite.fail()

	suite.now = suite.now.Add(11 * time.Second)

	suite.fail()
	suite.Equal(circuitBreakerStateClosed, suite.cb.state)
}

func (suite *CircuitBreakerTestSuite) TestHalfOpenSuccess() {
	suite.fail()
	suite.fail()

	suite.now = suite.now.Add(time.Minute)

	suite.True(suite.cb.Allow())
	suite.Equal(circuitBreakerStateHalfOpened, suite.cb.state)
	suite.False(suite.cb.Allow())

	suite.cb.Done(true)

	suite.Equal(circuitBreakerStateClosed, suite.cb.state)
	suite.True(suite.cb.Allow())
}

func (suite *CircuitBreakerTestSuite) TestHalfOpenFailure() {
	suite.fail()
	suite.fail()

	suite.now = suite.now.Add(time.Minute)

	suite.fail()

	suite.Equal(circuitBreakerStateOpened, suite.cb.state)
	suite.False(suite.cb.Allow())
}

func TestCircuitBreaker(t *testing.T) {
	suite.Run(t, &CircuitBreakerTestSuite{})
}
