// Package httputil provides HTTP plumbing for remote record sources.
//
// # Overview
//
//   - [Client]: GET with retry, response caching and stale fallback
//   - [ResponseCache]: file-based body cache (~/.cache/crimeviz/http/)
//   - [Retry]: exponential backoff for transient failures
//
// # Retry
//
// [Retry] only repeats errors wrapped in [RetryableError]. [Client] wraps
// network errors, 5xx responses and 429 responses; other statuses fail
// immediately with a [StatusError].
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return doRequest()
//	})
//
// # Caching
//
// [Client.Get] consults the cache first. An expired entry is not served
// while the source is healthy, but it is returned when every attempt
// fails, so an offline render still works with the last good data.
//
//	cache, err := httputil.NewResponseCache("", time.Hour)
//	client := httputil.NewClient(cache)
//	body, err := client.Get(ctx, "https://example.org/crime_stats.json")
//
// The cache is cleared by `crimeviz cache clear`.
package httputil
