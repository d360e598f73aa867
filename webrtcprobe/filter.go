package webrtcprobe

import (
	"net"
	"regexp"
)

var (
	ipv4Pattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)

	privateNetworks = []*net.IPNet{
		mustParseCIDR("10.0.0.0/8"),
		mustParseCIDR("172.16.0.0/12"),
		mustParseCIDR("192.168.0.0/16"),
	}
)

// FilterCandidates extracts IPv4 addresses from ICE candidate lines.
// Private, loopback and link-local addresses are dropped. Result has
// no duplicates and keeps an order of appearance.
func FilterCandidates(candidates []string) []string {
	seen := map[string]bool{}
	rv := []string{}

	for _, candidate := range candidates {
		for _, match := range ipv4Pattern.FindAllString(candidate, -1) {
			ip := net.ParseIP(match).To4()
			if ip == nil || !isPublic(ip) {
				continue
			}

			value := ip.String()
			if !seen[value] {
				seen[value] = true
				rv = append(rv, value)
			}
		}
	}

	return rv
}

func isPublic(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return false
	}

	for _, v := range privateNetworks {
		if v.Contains(ip) {
			return false
		}
	}

	return true
}

func mustParseCIDR(value string) *net.IPNet {
	_, network, err := net.ParseCIDR(value)
	if err != nil {
		panic(err)
	}

	return network
}
