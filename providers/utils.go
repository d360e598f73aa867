package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/9seconds/geointel/geolib"
)

const maxResponseSize = 1024 * 1024

func flushResponse(resp io.ReadCloser) {
	io.Copy(io.Discard, resp) // nolint: errcheck
	resp.Close()
}

// fetchJSON sends GET request and decodes JSON response into target.
// All errors are wrapped into geolib.ProviderError.
func fetchJSON(ctx context.Context,
	client geolib.HTTPClient,
	name, url string,
	headers map[string]string,
	target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return geolib.NewProviderError(name, fmt.Errorf("cannot build a request: %w", err))
	}

	req.Header.Set("Accept", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return geolib.NewProviderError(name, fmt.Errorf("cannot send a request: %w", err))
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &geolib.ProviderError{
			Provider:   name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	jsonDecoder := json.NewDecoder(bufio.NewReader(io.LimitReader(resp.Body, maxResponseSize)))

	if err := jsonDecoder.Decode(target); err != nil {
		return geolib.NewProviderError(name, fmt.Errorf("cannot parse a response: %w", err))
	}

	return nil
}

func providerError(name string, format string, args ...interface{}) error {
	return geolib.NewProviderError(name, fmt.Errorf(format, args...))
}
