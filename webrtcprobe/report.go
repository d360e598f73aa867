package webrtcprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/9seconds/geointel/geolib"
)

type verifyLeakRequest struct {
	LeakedIPs []string `json:"leaked_ips"`
	CurrentIP string   `json:"current_ip"`
}

// Report asks geointel service at baseURL about a current address of
// the caller and sends candidates for leak verification.
func Report(ctx context.Context,
	client geolib.HTTPClient,
	baseURL string,
	candidates []string) (*geolib.LeakVerification, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	current := geolib.Record{}

	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/ip/", nil, &current); err != nil {
		return nil, fmt.Errorf("cannot detect current ip: %w", err)
	}

	if len(candidates) == 0 {
		return &geolib.LeakVerification{
			CurrentIP: current.IP,
		}, nil
	}

	body, err := json.Marshal(verifyLeakRequest{
		LeakedIPs: candidates,
		CurrentIP: current.IP,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot encode request: %w", err)
	}

	rv := &geolib.LeakVerification{}

	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/verify-leak", body, rv); err != nil {
		return nil, fmt.Errorf("cannot verify leak: %w", err)
	}

	return rv, nil
}

func doJSON(ctx context.Context,
	client geolib.HTTPClient,
	method, url string,
	body []byte,
	target interface{}) error {
	var reader io.Reader

	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot send a request: %w", err)
	}

	defer func() {
		io.Copy(io.Discard, resp.Body) // nolint: errcheck
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("cannot parse a response: %w", err)
	}

	return nil
}
