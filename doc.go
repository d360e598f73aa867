// Geointel is a service which answers a question "what do we know
// about this IP address".
//
// It has 3 responsibilities:
//
// Geolocation
//
// An address is resolved by a chain of online geo-IP providers. The
// first provider which responds wins, its answer is normalized and
// derived fields are filled. So, a client always gets a record of the
// same shape regardless of who has answered.
//
// Reputation
//
// An address is checked against a set of DNS blacklists. DNS queries
// are sent via DNS-over-HTTPS. A result is a score from 0 to 100.
//
// WebRTC leaks
//
// A client sends addresses it has found in its WebRTC ICE candidates.
// If some of them can be geolocated, then a real address is leaked past
// VPN or proxy.
//
// This binary has 2 commands: serve starts HTTP service, probe gathers
// ICE candidates locally with pion and asks a running service if they
// leak.
package main
