package wordfreq

// Counts holds the two frequency maps produced for a page.
type Counts struct {
	All         map[string]int
	NoStopWords map[string]int
}

// Count tallies token occurrences.
func Count(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

// FilterStopWords returns a copy of counts without stop words.
func FilterStopWords(counts map[string]int) map[string]int {
	filtered := make(map[string]int, len(counts))
	for word, n := range counts {
		if !IsStopWord(word) {
			filtered[word] = n
		}
	}
	return filtered
}

// CountText tokenizes already-stripped text and counts it.
func CountText(text string) *Counts {
	all := Count(Tokenize(text))
	return &Counts{All: all, NoStopWords: FilterStopWords(all)}
}
