package geolib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	_ "time/tzdata"
)

func TestFillTimezone(t *testing.T) {
	winter := time.Date(2023, time.January, 10, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2023, time.July, 10, 12, 0, 0, 0, time.UTC)

	record := &Record{Timezone: OptionalString("Europe/Berlin")}

	record.fillTimezone(winter)
	assert.Equal(t, "+01:00", *record.TimezoneOffset)

	record = &Record{Timezone: OptionalString("Europe/Berlin")}

	record.fillTimezone(summer)
	assert.Equal(t, "+02:00", *record.TimezoneOffset)

	record = &Record{Timezone: OptionalString("Asia/Kolkata")}

	record.fillTimezone(summer)
	assert.Equal(t, "+05:30", *record.TimezoneOffset)

	record = &Record{Timezone: OptionalString("Mars/Olympus")}

	record.fillTimezone(summer)
	assert.Nil(t, record.TimezoneOffset)
}

func TestParseASN(t *testing.T) {
	number, name := parseASN("AS15169 Google LLC")

	assert.Equal(t, "AS15169", number)
	assert.Equal(t, "Google LLC", name)

	number, name = parseASN("15169")

	assert.Equal(t, "AS15169", number)
	assert.Empty(t, name)

	number, name = parseASN("Google LLC")

	assert.Empty(t, number)
	assert.Empty(t, name)
}
