// Package wordfreq turns an HTML page into word frequency counts.
//
// The pipeline is [StripMarkup] (goquery + x/net/html), [Tokenize] (a [bufio.SplitFunc] over the
// visible text), [Count] and [FilterStopWords]. [Analyze] runs all of it.
//
// Tokens are case-sensitive: "Cat" and "cat" are counted separately. Stop word matching is
// case-insensitive, so "The" is removed along with "the".
package wordfreq
