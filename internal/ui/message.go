package ui

import (
	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/tasks"
)

type resultsLoadedMsg struct {
	results []*models.Result
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type countCompleteMsg struct {
	outcome *tasks.Outcome
}

type resultDeletedMsg struct {
	id  string
	err error
}

type browserOpenedMsg struct {
	url string
	err error
}
