package geolib

import (
	"fmt"
	"math"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	IPVersion4 = "IPv4"
	IPVersion6 = "IPv6"
)

var (
	asnPattern       = regexp.MustCompile(`(?i)^\s*AS(\d+)(?:\s+(.+?))?\s*$`)
	asnNumberPattern = regexp.MustCompile(`^\s*(\d+)\s*$`)

	datacenterKeywords = []string{
		"amazon",
		"google cloud",
		"digitalocean",
		"cloudflare",
		"microsoft azure",
		"alibaba cloud",
		"oracle cloud",
		"ibm cloud",
		"tencent cloud",
		"hetzner",
		"linode",
		"vultr",
		"ovh",
		"rackspace",
		"datacenter",
		"hosting",
	}
)

// Record is a normalized result of IP lookup. Optional fields are
// nil if provider has not reported them.
//
// Geolocation is available only if both Latitude and Longitude are not
// nil. Records without coordinates are still valid but should not be
// plotted on a map.
type Record struct {
	IP             string   `json:"ip"`
	IPVersion      string   `json:"ip_version"`
	CountryName    *string  `json:"country_name"`
	CountryCode    *string  `json:"country_code"`
	Region         *string  `json:"region"`
	City           *string  `json:"city"`
	Postal         *string  `json:"postal"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Org            *string  `json:"org"`
	ASN            *string  `json:"asn"`
	ASNName        *string  `json:"asn_name"`
	ASNCountry     *string  `json:"asn_country"`
	ASNRoutes      *string  `json:"asn_routes"`
	CIDR           *string  `json:"cidr"`
	Timezone       *string  `json:"timezone"`
	TimezoneOffset *string  `json:"timezone_offset"`
	Currency       *string  `json:"currency"`
	Languages      *string  `json:"languages"`
	Proxy          bool     `json:"proxy"`
	Hosting        bool     `json:"hosting"`
	Mobile         bool     `json:"mobile"`
	Source         string   `json:"source"`
}

// Geolocated checks if record has usable coordinates.
func (r *Record) Geolocated() bool {
	return r != nil && r.Latitude != nil && r.Longitude != nil
}

// Fill sets IP address of the record and derives fields which can be
// calculated from other ones. These rules are the same for all
// providers.
func (r *Record) Fill(ip net.IP, source string) {
	r.IP = ip.String()
	r.IPVersion = IPVersionOf(r.IP)
	r.Source = source

	r.fillCountry()
	r.fillASN()
	r.fillNetwork()
	r.fillTimezone(time.Now())
	r.fillHosting()
}

func (r *Record) fillCountry() {
	if r.CountryCode != nil {
		code := strings.TrimSpace(*r.CountryCode)

		if len(code) == 3 {
			code = Alpha3ToAlpha2(code)
		}

		r.CountryCode = OptionalString(NormalizeAlpha2Code(code))
	}

	if r.CountryCode == nil {
		return
	}

	details, ok := LookupCountry(*r.CountryCode)
	if !ok {
		return
	}

	if r.CountryName == nil || strings.EqualFold(*r.CountryName, *r.CountryCode) {
		r.CountryName = OptionalString(details.CommonName)
	}

	if r.Currency == nil {
		r.Currency = OptionalString(details.Currency)
	}

	if r.Languages == nil {
		r.Languages = OptionalString(details.Languages)
	}
}

func (r *Record) fillASN() {
	if r.ASN != nil {
		number, name := parseASN(*r.ASN)

		if number != "" {
			r.ASN = OptionalString(number)
		}

		if r.ASNName == nil {
			r.ASNName = OptionalString(name)
		}
	}

	if r.Org != nil && (r.ASN == nil || r.ASNName == nil) {
		if number, name := parseASN(*r.Org); number != "" {
			if r.ASN == nil {
				r.ASN = OptionalString(number)
			}

			// org may belong to a different AS than reported one
			if r.ASNName == nil && *r.ASN == number {
				r.ASNName = OptionalString(name)
			}
		}
	}

	if r.ASNCountry == nil && r.ASN != nil {
		r.ASNCountry = r.CountryCode
	}
}

func (r *Record) fillNetwork() {
	if r.CIDR == nil && r.ASNRoutes != nil {
		if _, network, err := net.ParseCIDR(*r.ASNRoutes); err == nil {
			if network.Contains(net.ParseIP(r.IP)) {
				r.CIDR = OptionalString(network.String())
			}
		}
	}
}

func (r *Record) fillTimezone(now time.Time) {
	if r.TimezoneOffset != nil || r.Timezone == nil {
		return
	}

	loc, err := time.LoadLocation(*r.Timezone)
	if err != nil {
		return
	}

	_, offset := now.In(loc).Zone()
	r.TimezoneOffset = OptionalString(FormatUTCOffset(offset))
}

func (r *Record) fillHosting() {
	if r.Hosting {
		return
	}

	for _, v := range []*string{r.Org, r.ASNName} {
		if v != nil && isDatacenter(*v) {
			r.Hosting = true

			return
		}
	}
}

func isDatacenter(org string) bool {
	org = strings.ToLower(org)

	for _, v := range datacenterKeywords {
		if strings.Contains(org, v) {
			return true
		}
	}

	return false
}

// parseASN splits strings like 'AS15169 Google LLC' into 'AS15169' and
// 'Google LLC'. Bare numbers are returned as 'AS<number>'.
func parseASN(value string) (string, string) {
	if groups := asnPattern.FindStringSubmatch(value); groups != nil {
		return "AS" + groups[1], strings.TrimSpace(groups[2])
	}

	if groups := asnNumberPattern.FindStringSubmatch(value); groups != nil {
		return "AS" + groups[1], ""
	}

	return "", ""
}

// IPVersionOf returns IPv6 for addresses with colons and IPv4
// otherwise.
func IPVersionOf(ip string) string {
	if strings.Contains(ip, ":") {
		return IPVersion6
	}

	return IPVersion4
}

// FormatUTCOffset formats offset in seconds as +HH:MM.
func FormatUTCOffset(seconds int) string {
	sign := '+'

	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}

	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// ParseUTCOffset accepts offsets like -0700, +05:30 or -07 and returns
// them formatted as +HH:MM. Empty string is returned for anything
// unparseable.
func ParseUTCOffset(value string) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), ":", "")

	if len(value) < 3 || (value[0] != '+' && value[0] != '-') {
		return ""
	}

	digits := value[1:]

	switch len(digits) {
	case 2:
		digits += "00"
	case 4:
	default:
		return ""
	}

	hours, err := strconv.Atoi(digits[:2])
	if err != nil {
		return ""
	}

	minutes, err := strconv.Atoi(digits[2:])
	if err != nil || minutes >= 60 {
		return ""
	}

	seconds := hours*3600 + minutes*60
	if value[0] == '-' {
		seconds = -seconds
	}

	return FormatUTCOffset(seconds)
}

// OptionalString returns nil for empty strings.
func OptionalString(value string) *string {
	value = strings.TrimSpace(value)

	if value == "" {
		return nil
	}

	return &value
}

// OptionalCoordinates returns coordinates only if both of them are
// present and within valid ranges.
func OptionalCoordinates(lat, lng *float64) (*float64, *float64) {
	if lat == nil || lng == nil {
		return nil, nil
	}

	latitude, longitude := *lat, *lng

	switch {
	case math.IsNaN(latitude), math.IsNaN(longitude):
		return nil, nil
	case latitude < -90 || latitude > 90:
		return nil, nil
	case longitude < -180 || longitude > 180:
		return nil, nil
	}

	return &latitude, &longitude
}

// ParseCoordinates parses string coordinates. Anything unparseable
// returns nils.
func ParseCoordinates(lat, lng string) (*float64, *float64) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, nil
	}

	longitude, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return nil, nil
	}

	return OptionalCoordinates(&latitude, &longitude)
}
