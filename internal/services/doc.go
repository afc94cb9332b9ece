// Package services implements outbound HTTP access for the word count pipeline.
//
// # Fetcher
//
// [Fetcher] is the narrow interface the pipeline depends on. [PageService] implements it with:
//   - a client timeout taken from the [fetch] config section (30s by default)
//   - a token bucket limiter ([rate.Limiter]) shared by every fetch made through the service
//   - a fixed User-Agent header
//   - a cap on the number of body bytes read
//
// # Error Handling
//
// Every failure wraps [shared.ErrFetch]: invalid URLs, transport errors, timeouts, cancelled contexts
// and any response with a status of 400 or above. No request is retried.
package services
