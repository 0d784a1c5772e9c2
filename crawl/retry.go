package crawl

import (
	"context"
	"time"

	"github.com/apotheon-labs/siteindex"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// fetchWithRetry fetches a URL with backoff, retrying only transport
// failures. Responses the fetcher classified as EINVALID (non-2xx, wrong
// content type) are permanent for the duration of a crawl and returned
// immediately.
func fetchWithRetry(ctx context.Context, fetcher siteindex.Fetcher, url string, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := fetcher.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if siteindex.ErrorCode(err) == siteindex.EINVALID {
			break
		}
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return "", lastErr
}
