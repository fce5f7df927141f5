// Package retry wraps feed requests in bounded retries with backoff.
//
// Transient failures (network errors, HTTP 429, 5xx) are retried; parsing and
// not-found errors surface immediately. Each error type gets its own backoff
// curve, so a 429 waits considerably longer than a dropped connection.
//
//	body, err := retry.DoWithResult(ctx, func() ([]byte, error) {
//		return fetchOnce(ctx, url)
//	}, retry.FromConfig(cfg.Retry, log))
package retry
