// Package webrtcprobe discovers addresses which WebRTC stack exposes to
// remote peers.
//
// A browser gathers ICE candidates for every network interface it has
// and asks STUN servers for a server reflexive address. If a client
// uses VPN or proxy, some of these addresses may belong to a real
// network and leak its location. This package does the same gathering
// with pion and reports public IPv4 addresses found in candidates.
//
// These addresses can be sent to /verify-leak endpoint of geointel
// service. Report does that.
package webrtcprobe
