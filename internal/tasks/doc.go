// Package tasks runs the fetch-and-count unit of work with real-time progress reporting.
//
// # Unit of Work
//
// [CountEngine.Run] performs one complete pass for a URL:
//
//  1. Fetch the page through [services.Fetcher]
//  2. Strip markup and tokenize with [wordfreq]
//  3. Count all tokens and the tokens that are not stop words
//  4. Persist a [models.Result] through [ResultStore]
//
// The same function backs the synchronous index handler, the `count` command and the queue worker.
//
// # Outcomes
//
// Runs never return an error. Each produces an [Outcome] that encodes as {"result": id} or
// {"error": [message]}, with a [Kind] of [KindNone], [KindFetch] or [KindPersistence].
// Failures are logged and counted before the outcome is returned. Nothing is retried.
//
// # Progress Reporting
//
// Progress updates are sent on an optional channel with select/default so reporting never blocks a run.
//
// # URL Normalization
//
// [NormalizeURL] prefixes user input with http:// when it has no scheme.
package tasks
