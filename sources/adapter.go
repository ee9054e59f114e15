package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"

	"gamearr/release"
)

const defaultTimeout = 10 * time.Second

// Result is one raw release returned by an adapter. Seen is the source's
// own first-seen time when available, nil otherwise.
type Result struct {
	Name   string
	Source string
	Tier   release.Tier
	Seen   *time.Time
}

// Adapter is one external release source. Search never returns an error:
// a broken or unconfigured source degrades recall, never correctness, so
// failures are logged inside the adapter and surface as an empty slice.
type Adapter interface {
	Label() string
	Search(ctx context.Context, phrase string) []Result
}

// getJSON performs a GET with bounded retries and decodes the body into
// target. Shared by the plain-HTTP adapters.
func getJSON(ctx context.Context, client *http.Client, userAgent, baseURL string, params url.Values, target interface{}) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if params != nil {
				req.URL.RawQuery = params.Encode()
			}
			req.Header.Set("User-Agent", userAgent)
			req.Header.Set("Accept", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to execute request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return fmt.Errorf("api request failed: status %d, body: %s", resp.StatusCode, string(bodyBytes))
			}
			if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
				return fmt.Errorf("failed to decode json response: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// dedupe drops duplicate names within one adapter's result set. Cross
// source dedup happens later during reconciliation.
func dedupe(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, r := range results {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r)
	}
	return out
}
