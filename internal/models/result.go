package models

import (
	"fmt"
	"sort"
	"time"
)

// WordCount is a single word and the number of times it occurred.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SortWordCounts flattens counts into a slice ordered by count descending, then word ascending.
func SortWordCounts(counts map[string]int) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, WordCount{Word: word, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})

	return out
}

// Result is the persisted word count of a single fetched page.
//
// Results are written once and never updated by the application; deletedAt is only set by
// administrative removal.
type Result struct {
	id          string
	sequence    int
	url         string
	all         map[string]int
	noStopWords map[string]int
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewResult creates a [Result] for url with both count maps. The ID is assigned on Create.
func NewResult(sequence int, url string, all, noStopWords map[string]int) *Result {
	now := time.Now()
	if all == nil {
		all = map[string]int{}
	}
	if noStopWords == nil {
		noStopWords = map[string]int{}
	}
	return &Result{
		sequence:    sequence,
		url:         url,
		all:         all,
		noStopWords: noStopWords,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (r *Result) ID() string                  { return r.id }
func (r *Result) Sequence() int               { return r.sequence }
func (r *Result) URL() string                 { return r.url }
func (r *Result) All() map[string]int         { return r.all }
func (r *Result) NoStopWords() map[string]int { return r.noStopWords }
func (r *Result) CreatedAt() time.Time        { return r.createdAt }
func (r *Result) UpdatedAt() time.Time        { return r.updatedAt }
func (r *Result) DeletedAt() *time.Time       { return r.deletedAt }

func (r *Result) SetID(id string)           { r.id = id }
func (r *Result) SetSequence(seq int)       { r.sequence = seq }
func (r *Result) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *Result) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *Result) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Sorted returns the stop-word filtered counts ordered for display.
func (r *Result) Sorted() []WordCount {
	return SortWordCounts(r.noStopWords)
}

// SortedAll returns the unfiltered counts ordered for display.
func (r *Result) SortedAll() []WordCount {
	return SortWordCounts(r.all)
}

// TotalWords is the number of counted tokens before stop words are removed.
func (r *Result) TotalWords() int {
	total := 0
	for _, c := range r.all {
		total += c
	}
	return total
}

// Validate checks that the result has a URL and that every filtered count is backed by an
// equal-or-larger unfiltered count.
func (r *Result) Validate() error {
	if r.id == "" {
		return fmt.Errorf("result ID is required")
	}
	if r.url == "" {
		return fmt.Errorf("result URL is required")
	}
	for word, count := range r.noStopWords {
		all, ok := r.all[word]
		if !ok {
			return fmt.Errorf("filtered word %q missing from unfiltered counts", word)
		}
		if count > all {
			return fmt.Errorf("filtered count for %q exceeds unfiltered count (%d > %d)", word, count, all)
		}
	}
	return nil
}
