package geolib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/miekg/dns"
)

const (
	DefaultDoHEndpoint = "https://cloudflare-dns.com/dns-query"

	DoHFormatJSON = "json"
	DoHFormatWire = "wire"

	dohMaxResponseSize = 64 * 1024
)

type dohJSONResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Name string `json:"name"`
		Type uint16 `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

type dohJSONClient struct {
	endpoint string
	client   HTTPClient
}

func (d dohJSONClient) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	query := url.Values{}

	query.Set("name", dns.Fqdn(name))
	query.Set("type", dns.TypeToString[dns.TypeA])

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/dns-json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	jsonResponse := dohJSONResponse{}

	if err := json.NewDecoder(io.LimitReader(resp.Body, dohMaxResponseSize)).Decode(&jsonResponse); err != nil {
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	switch jsonResponse.Status {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("dns server has responded with %s", dns.RcodeToString[jsonResponse.Status])
	}

	rv := []net.IP{}

	for _, v := range jsonResponse.Answer {
		if v.Type != dns.TypeA {
			continue
		}

		if ip := net.ParseIP(v.Data); ip != nil {
			rv = append(rv, ip)
		}
	}

	return rv, nil
}

type dohWireClient struct {
	endpoint string
	client   HTTPClient
}

func (d dohWireClient) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	msg := &dns.Msg{}

	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)

	// RFC 8484 4.1: ID should be 0 to be cache-friendly
	msg.Id = 0

	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("cannot pack dns message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/dns-message")
	req.Header.Set("Content-Type", "application/dns-message")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, dohMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read a response: %w", err)
	}

	answer := &dns.Msg{}
	if err := answer.Unpack(body); err != nil {
		return nil, fmt.Errorf("cannot unpack dns message: %w", err)
	}

	switch answer.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("dns server has responded with %s", dns.RcodeToString[answer.Rcode])
	}

	rv := []net.IP{}

	for _, v := range answer.Answer {
		if record, ok := v.(*dns.A); ok {
			rv = append(rv, record.A)
		}
	}

	return rv, nil
}

// NewDNSClient returns DNS-over-HTTPS client. format is either
// DoHFormatJSON (application/dns-json) or DoHFormatWire (RFC 8484).
func NewDNSClient(client HTTPClient, endpoint, format string) (DNSClient, error) {
	if endpoint == "" {
		endpoint = DefaultDoHEndpoint
	}

	switch format {
	case "", DoHFormatJSON:
		return dohJSONClient{endpoint: endpoint, client: client}, nil
	case DoHFormatWire:
		return dohWireClient{endpoint: endpoint, client: client}, nil
	}

	return nil, fmt.Errorf("unknown dns-over-https format %s", format)
}
