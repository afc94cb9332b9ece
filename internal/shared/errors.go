package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrUnknownProfile     = fmt.Errorf("unknown settings profile")
	ErrMissingDatabaseURL = fmt.Errorf("DATABASE_URL is not set")

	// Word count pipeline errors
	ErrFetch       = fmt.Errorf("unable to get URL")
	ErrPersistence = fmt.Errorf("unable to add item to database")
	ErrNotFound    = fmt.Errorf("not found")
	ErrImmutable   = fmt.Errorf("record cannot be modified")

	// Queue errors
	ErrQueueUnavailable = fmt.Errorf("job queue unavailable")
	ErrJobFailed        = fmt.Errorf("job failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	ErrBrowserUnavailable = fmt.Errorf("unable to open browser")
)
