package wordfreq

import (
	"slices"
	"strings"
)

// englishStopWords is the standard 127-word English list.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours", "yourself",
	"yourselves", "he", "him", "his", "himself", "she", "her", "hers", "herself", "it", "its", "itself",
	"they", "them", "their", "theirs", "themselves", "what", "which", "who", "whom", "this", "that",
	"these", "those", "am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if", "or", "because", "as",
	"until", "while", "of", "at", "by", "for", "with", "about", "against", "between", "into", "through",
	"during", "before", "after", "above", "below", "to", "from", "up", "down", "in", "out", "on", "off",
	"over", "under", "again", "further", "then", "once", "here", "there", "when", "where", "why", "how",
	"all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no", "nor", "not",
	"only", "own", "same", "so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "should",
	"now",
}

var stopWordSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(englishStopWords))
	for _, w := range englishStopWords {
		set[w] = struct{}{}
	}
	return set
}()

// StopWords returns a sorted copy of the stop word list.
func StopWords() []string {
	words := slices.Clone(englishStopWords)
	slices.Sort(words)
	return words
}

// IsStopWord reports whether word, lower-cased, is a stop word.
func IsStopWord(word string) bool {
	_, ok := stopWordSet[strings.ToLower(word)]
	return ok
}
