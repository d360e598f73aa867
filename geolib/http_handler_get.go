package geolib

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const allProvidersFailedMessage = "All IP services failed. Please try again later."

var errNoAddresses = errors.New("domain name has no addresses")

func (h httpHandler) handleGetIP(w http.ResponseWriter, req *http.Request) {
	target := strings.TrimSpace(chi.URLParam(req, "ip"))

	var ipAddr net.IP

	switch {
	case target == "":
		ipAddr = ClientAddress(req)
		if ipAddr == nil {
			h.sendError(w, nil, "Cannot detect your IP address", http.StatusInternalServerError)

			return
		}
	case ValidIP(target):
		ipAddr = net.ParseIP(target)
	case ValidHostname(target):
		resolved, err := h.resolveHostname(req.Context(), target)

		switch {
		case errors.Is(err, errNoAddresses):
			h.sendError(w, nil, "Cannot resolve domain name", http.StatusBadRequest)

			return
		case err != nil:
			h.sendError(w, err, "DNS resolver is unavailable", http.StatusBadGateway)

			return
		}

		ipAddr = resolved
	default:
		h.sendError(w, nil, "Invalid IP address or domain name", http.StatusBadRequest)

		return
	}

	record, err := h.resolver.Resolve(req.Context(), ipAddr)

	switch {
	case errors.Is(err, ErrAllProvidersFailed):
		h.sendError(w, nil, allProvidersFailedMessage, http.StatusServiceUnavailable)

		return
	case err != nil:
		h.sendError(w, err, "Internal server error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(httpCacheMaxAge))
	h.encodeJSON(w, http.StatusOK, record)
}

func (h httpHandler) resolveHostname(ctx context.Context, hostname string) (net.IP, error) {
	addrs, err := h.dns.LookupA(ctx, hostname)
	if err != nil {
		return nil, err
	}

	if len(addrs) == 0 {
		return nil, errNoAddresses
	}

	return addrs[0], nil
}

func (h httpHandler) handleGetReputation(w http.ResponseWriter, req *http.Request) {
	value := strings.TrimSpace(req.URL.Query().Get("ip"))

	if value == "" {
		h.sendError(w, nil, "Missing ip parameter", http.StatusBadRequest)

		return
	}

	ipAddr := net.ParseIP(value)
	if ipAddr == nil {
		h.sendError(w, nil, "Invalid IP address", http.StatusBadRequest)

		return
	}

	h.encodeJSON(w, http.StatusOK, h.reputation.Score(req.Context(), ipAddr))
}

func (h httpHandler) handleGetPOI(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	latValue := strings.TrimSpace(query.Get("lat"))
	lngValue := strings.TrimSpace(query.Get("lng"))

	if latValue == "" || lngValue == "" {
		h.sendError(w, nil, "Missing lat or lng parameter", http.StatusBadRequest)

		return
	}

	lat, lng := ParseCoordinates(latValue, lngValue)
	if lat == nil {
		h.sendError(w, nil, "Invalid lat or lng parameter", http.StatusBadRequest)

		return
	}

	radius := DefaultPOIRadius

	if value := strings.TrimSpace(query.Get("radius")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			h.sendError(w, nil, "Invalid radius parameter", http.StatusBadRequest)

			return
		}

		radius = parsed
	}

	pois, err := h.poi.Nearby(req.Context(), *lat, *lng, radius)
	if err != nil {
		h.sendError(w, err, "Failed to fetch POI data", http.StatusBadGateway)

		return
	}

	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(httpCacheMaxAge))
	h.encodeJSON(w, http.StatusOK, pois)
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	response := struct {
		Results []*UsageStats `json:"results"`
	}{
		Results: h.resolver.UsageStats(),
	}

	h.encodeJSON(w, http.StatusOK, response)
}
