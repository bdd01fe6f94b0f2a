package billing

import (
	"errors"
	"fmt"
	"strings"
)

// MissingDataError reports an event that lacks fields required for its
// intent. Redelivery cannot fix it, so it is acknowledged.
type MissingDataError struct {
	EventType string
	Fields    []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.EventType, strings.Join(e.Fields, ", "))
}

// RetryableError wraps a store fault. The webhook answers 500 so the
// provider redelivers the event later.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
