package wordfreq

import (
	"bufio"
	"strings"
	"unicode"
	"unicode/utf8"
)

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// isJoiner reports runes kept only between two word runes: "don't", "well-known".
func isJoiner(r rune) bool {
	switch r {
	case '\'', '’', '-':
		return true
	}
	return false
}

// ScanTokens is a [bufio.SplitFunc] yielding runs of letters, digits and marks.
// Apostrophes and hyphens stay inside a token when both neighbours are word runes.
// Everything else separates tokens and is dropped.
func ScanTokens(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		if !atEOF && !utf8.FullRune(data[start:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[start:])
		if isWordRune(r) {
			break
		}
		start += width
	}

	for i := start; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			return start, nil, nil
		}
		r, width := utf8.DecodeRune(data[i:])
		if isWordRune(r) {
			i += width
			continue
		}
		if isJoiner(r) {
			if i+width >= len(data) || !utf8.FullRune(data[i+width:]) {
				if !atEOF {
					return start, nil, nil
				}
				return i + width, data[start:i], nil
			}
			if next, _ := utf8.DecodeRune(data[i+width:]); isWordRune(next) {
				i += width
				continue
			}
		}
		return i + width, data[start:i], nil
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

// HasLetter reports whether s contains at least one letter.
func HasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// Tokenize splits text into tokens, keeping only those with at least one letter.
func Tokenize(text string) []string {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	scanner.Split(ScanTokens)

	var tokens []string
	for scanner.Scan() {
		if tok := scanner.Text(); HasLetter(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
