package geolib

import (
	"sync"
	"time"
)

type circuitBreakerState uint8

const (
	circuitBreakerStateClosed circuitBreakerState = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

// circuitBreaker stops sending requests to a netloc which keeps failing.
// Failures are counted within resetFailuresTimeout window. When count
// reaches openThreshold, breaker becomes OPEN for halfOpenTimeout. After
// that it goes into HALF_OPEN state and lets a single request to pass:
// if it succeeds, breaker is CLOSED again, otherwise it is OPEN.
type circuitBreaker struct {
	mutex sync.Mutex
	now   func() time.Time

	state            circuitBreakerState
	failuresCount    uint32
	failuresStarted  time.Time
	openedAt         time.Time
	halfOpenInFlight bool

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

// Allow checks if request can be made. If it returns true, caller has
// to report a result with Done.
func (c *circuitBreaker) Allow() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.state {
	case circuitBreakerStateClosed:
		return true
	case circuitBreakerStateOpened:
		if c.now().Sub(c.openedAt) < c.halfOpenTimeout {
			return false
		}

		c.state = circuitBreakerStateHalfOpened
		c.halfOpenInFlight = false
	}

	if c.halfOpenInFlight {
		return false
	}

	c.halfOpenInFlight = true

	return true
}

func (c *circuitBreaker) Done(success bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()

	switch c.state {
	case circuitBreakerStateHalfOpened:
		c.halfOpenInFlight = false

		if success {
			c.close()
		} else {
			c.open(now)
		}
	case circuitBreakerStateClosed:
		if success {
			return
		}

		if now.Sub(c.failuresStarted) > c.resetFailuresTimeout {
			c.failuresCount = 0
			c.failuresStarted = now
		}

		c.failuresCount++

		if c.failuresCount >= c.openThreshold {
			c.open(now)
		}
	}
}

func (c *circuitBreaker) open(now time.Time) {
	c.state = circuitBreakerStateOpened
	c.openedAt = now
	c.failuresCount = 0
}

func (c *circuitBreaker) close() {
	c.state = circuitBreakerStateClosed
	c.failuresCount = 0
	c.failuresStarted = time.Time{}
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	if openThreshold == 0 {
		openThreshold = 1
	}

	return &circuitBreaker{
		now:                  time.Now,
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}
}
