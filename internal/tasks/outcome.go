package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
)

// User-facing messages for the two failure kinds.
const (
	FetchErrorMessage       = "Unable to get URL. Please make sure it's valid and try again."
	PersistenceErrorMessage = "Unable to add item to database."
)

// Kind classifies how a run ended.
type Kind int

const (
	KindNone Kind = iota
	KindFetch
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFetch:
		return "fetch"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for the kind, or nil for [KindNone].
func (k Kind) Err() error {
	switch k {
	case KindFetch:
		return shared.ErrFetch
	case KindPersistence:
		return shared.ErrPersistence
	default:
		return nil
	}
}

// Outcome is the result of one fetch-and-count run.
//
// It encodes as {"result": "<id>"} on success and {"error": ["<message>"]} on failure.
type Outcome struct {
	ResultID string         `json:"result,omitempty"`
	Errors   []string       `json:"error,omitempty"`
	Kind     Kind           `json:"-"`
	URL      string         `json:"-"`
	Result   *models.Result `json:"-"` // Set on success when the run persisted in-process
}

func succeeded(url string, result *models.Result) *Outcome {
	return &Outcome{ResultID: result.ID(), URL: url, Result: result}
}

func failed(url string, kind Kind) *Outcome {
	msg := FetchErrorMessage
	if kind == KindPersistence {
		msg = PersistenceErrorMessage
	}
	return &Outcome{Errors: []string{msg}, Kind: kind, URL: url}
}

// OK reports whether the run persisted a result.
func (o *Outcome) OK() bool {
	return o.Kind == KindNone && o.ResultID != ""
}

// Message returns the first error message, or "" on success.
func (o *Outcome) Message() string {
	if len(o.Errors) == 0 {
		return ""
	}
	return o.Errors[0]
}

// Err converts a failed outcome back into an error wrapping the kind's sentinel.
func (o *Outcome) Err() error {
	if o.OK() {
		return nil
	}
	if err := o.Kind.Err(); err != nil {
		return fmt.Errorf("%w: %s", err, o.Message())
	}
	return fmt.Errorf("%w: %s", shared.ErrJobFailed, o.Message())
}

// Encode returns the JSON payload stored with a finished job.
func (o *Outcome) Encode() ([]byte, error) {
	return json.Marshal(o)
}

// DecodeOutcome parses a stored payload and restores its [Kind] from the message.
func DecodeOutcome(data []byte) (*Outcome, error) {
	var o Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to decode outcome: %w", err)
	}
	switch o.Message() {
	case "":
	case FetchErrorMessage:
		o.Kind = KindFetch
	case PersistenceErrorMessage:
		o.Kind = KindPersistence
	}
	return &o, nil
}
