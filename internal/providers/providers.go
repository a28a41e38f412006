// Package providers wraps the external data sources the planner fans out to.
// Every client maps missing credentials, timeouts, non-2xx statuses and
// malformed bodies to sentinel errors; nothing here panics or surfaces a raw
// transport fault to the orchestrator.
package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNotConfigured is returned before any network call when a category
	// has no credentials. The orchestrator substitutes fallback data.
	ErrNotConfigured = errors.New("PROVIDER_NOT_CONFIGURED")

	// ErrProviderFailed covers timeouts, non-2xx statuses and malformed
	// response bodies from a live call.
	ErrProviderFailed = errors.New("PROVIDER_FAILURE")
)

// decodeBody reads and unmarshals a response body, mapping failures to
// ErrProviderFailed.
func decodeBody(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrProviderFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrProviderFailed, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrProviderFailed, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
