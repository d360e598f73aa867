package geolib

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	hostnamePattern = regexp.MustCompile(`^(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

	clientAddressHeaders = []string{
		"CF-Connecting-IP",
		"True-Client-IP",
		"X-Real-IP",
	}
)

// ValidIP checks if value is a dotted-quad IPv4 or colon-separated IPv6
// address.
func ValidIP(value string) bool {
	return net.ParseIP(value) != nil
}

// ValidHostname checks if value looks like a fully qualified domain
// name.
func ValidHostname(value string) bool {
	value = strings.TrimSuffix(value, ".")

	return len(value) <= 253 && hostnamePattern.MatchString(value)
}

// ClientAddress returns the best guess of the address of the client
// which has sent the request. Headers set by proxies and CDNs are
// checked first; RemoteAddr is the last resort.
func ClientAddress(req *http.Request) net.IP {
	for _, v := range clientAddressHeaders {
		if ip := net.ParseIP(strings.TrimSpace(req.Header.Get(v))); ip != nil {
			return ip
		}
	}

	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.SplitN(forwarded, ",", 2)[0]

		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}

	return net.ParseIP(host)
}
