package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a fetch-and-count run.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number, 1-based
	Total   int    // Total steps in a run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Fetch Phase = iota
	Parse
	Count
	Persist
	Done
)

// totalSteps is the number of phases a successful run reports.
const totalSteps = 5

func (p Phase) String() string {
	switch p {
	case Fetch:
		return "fetch"
	case Parse:
		return "parse"
	case Count:
		return "count"
	case Persist:
		return "persist"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Fetch,
		Step:    1,
		Total:   totalSteps,
		Message: fmt.Sprintf("Fetching %s...", url),
	}
}

func parseUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Parse,
		Step:    2,
		Total:   totalSteps,
		Message: fmt.Sprintf("Stripping markup (%d bytes)...", size),
	}
}

func countUpdate(textLen int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Count,
		Step:    3,
		Total:   totalSteps,
		Message: fmt.Sprintf("Counting words in %d characters of text...", textLen),
	}
}

func persistUpdate(unique int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persist,
		Step:    4,
		Total:   totalSteps,
		Message: fmt.Sprintf("Saving %d distinct words...", unique),
	}
}

func doneUpdate(outcome *Outcome) ProgressUpdate {
	msg := fmt.Sprintf("✓ Saved result %s", outcome.ResultID)
	if !outcome.OK() {
		msg = fmt.Sprintf("✗ %s", outcome.Message())
	}
	return ProgressUpdate{
		Phase:   Done,
		Step:    totalSteps,
		Total:   totalSteps,
		Message: msg,
		Data:    outcome,
	}
}
