package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/wordcount/internal/models"
)

var (
	_ list.Item = resultItem{}
	_ list.Item = wordItem{}
)

// resultItem wraps [models.Result] to implement [list.Item].
type resultItem struct {
	result *models.Result
}

func (i resultItem) FilterValue() string { return i.result.URL() }
func (i resultItem) Title() string       { return i.result.URL() }
func (i resultItem) Description() string {
	return fmt.Sprintf("%d words • %d unique • %s",
		i.result.TotalWords(),
		len(i.result.NoStopWords()),
		i.result.CreatedAt().Local().Format("2006-01-02 15:04"),
	)
}

// wordItem wraps [models.WordCount] to implement [list.Item].
type wordItem struct {
	word  models.WordCount
	total int
}

func (i wordItem) FilterValue() string { return i.word.Word }
func (i wordItem) Title() string       { return i.word.Word }
func (i wordItem) Description() string {
	if i.total == 0 {
		return fmt.Sprintf("%d", i.word.Count)
	}
	return fmt.Sprintf("%d • %.1f%%", i.word.Count, float64(i.word.Count)*100/float64(i.total))
}

func resultItems(results []*models.Result) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}

func wordItems(words []models.WordCount, total int) []list.Item {
	items := make([]list.Item, len(words))
	for i, w := range words {
		items[i] = wordItem{word: w, total: total}
	}
	return items
}
