// This package provides a set of structs and functions which are used
// to geolocate IP addresses using a chain of online providers.
//
// geolib is core of the geointel project. You can treat the rest of the
// application as an _example_ on how to use this library: how to pass
// parameters from HTTP requests, how to configure providers, how to log.
//
// Resolver is a main entity of the geolib. It has an ordered list of
// providers and asks them one by one until somebody returns a record.
// Each provider returns a Record in a common shape; Resolver fills
// derived fields (IP version, ASN name, timezone offset etc) and caches
// the result.
//
// ReputationScorer checks IP address against a set of DNS blacklists
// with DNS-over-HTTPS and converts a listing ratio into a score. It
// never fails: if nothing could be checked, it returns a neutral
// fallback score.
//
// LeakVerifier accepts a set of addresses discovered by WebRTC probe and
// checks if any of them can be geolocated. If yes, it is considered as a
// real address leaked through VPN.
//
// Handler glues everything together into http.Handler.
package geolib
