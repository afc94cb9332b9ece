package tasks

import "strings"

// NormalizeURL prefixes raw with "http://" unless its first seven characters contain "http://".
//
// The rule is applied literally, so "https://example.com" becomes "http://https://example.com".
// Nothing else is validated; malformed URLs fail when fetched.
func NormalizeURL(raw string) string {
	if !strings.Contains(raw[:min(7, len(raw))], "http://") {
		return "http://" + raw
	}
	return raw
}
