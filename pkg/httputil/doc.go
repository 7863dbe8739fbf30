// Package httputil provides the HTTP client used to download fonts.
//
// # Overview
//
//   - [Client]: GET requests with default headers, status mapping and an
//     optional byte cache in front of every request
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// [Client.Cached] checks a [cache.Cache] before calling the fetch function
// and stores the result afterwards. The CLI passes a file cache under the
// user cache directory, the server a Redis cache.
//
// # Retry
//
// [Retry] re-runs a function while it returns a [RetryableError].
// [Client] wraps network failures and 5xx responses that way; 404 and
// other 4xx statuses are returned immediately.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    body, err = client.GetBytes(ctx, url)
//	    return err
//	})
package httputil
