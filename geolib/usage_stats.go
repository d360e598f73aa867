package geolib

import (
	"encoding/json"
	"sync"
	"time"
)

// UsageStats tracks how a provider is used by Resolver. It is exposed
// on admin endpoint only, so the last error is shown as is.
type UsageStats struct {
	Name string

	mutex        sync.Mutex
	lastUsed     time.Time
	lastFailed   time.Time
	lastError    string
	successCount uint64
	failureCount uint64
}

func (u *UsageStats) Used(err error) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	if err == nil {
		u.successCount++

		return
	}

	u.lastFailed = now
	u.lastError = err.Error()
	u.failureCount++
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	u.mutex.Lock()

	rawStruct := struct {
		Name         string `json:"name"`
		LastUsed     int64  `json:"last_used"`
		LastFailed   int64  `json:"last_failed"`
		LastError    string `json:"last_error,omitempty"`
		SuccessCount uint64 `json:"success_count"`
		FailureCount uint64 `json:"failure_count"`
	}{
		Name:         u.Name,
		LastUsed:     unixOrZero(u.lastUsed),
		LastFailed:   unixOrZero(u.lastFailed),
		LastError:    u.lastError,
		SuccessCount: u.successCount,
		FailureCount: u.failureCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.Unix()
}
