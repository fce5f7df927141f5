// Package sina talks to the Weibo mobile feed API.
//
// It covers three concerns:
//   - Client: an HTTP fetcher with user-agent rotation, typed errors and retries
//   - Endpoints: URL builders for the container index and feed pages
//   - Response types: the subset of the index and page JSON the crawler reads
//
// Example usage:
//
//	client := sina.NewClient(cfg.Sina, retry.FromConfig(cfg.Retry, log), log)
//	endpoints := sina.NewEndpoints(cfg.Sina.BaseURL)
//
//	body, err := client.Fetch(ctx, endpoints.IndexURL(uid))
//	containerID, ok, err := sina.ParseContainerID(body)
package sina
