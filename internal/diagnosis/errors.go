package diagnosis

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionUnavailable means no warehouse connection could be acquired
	ErrConnectionUnavailable = errors.New("warehouse connection unavailable")
	// ErrGraphQuery means the knowledge graph failed mid-walk
	ErrGraphQuery = errors.New("knowledge graph query failed")
	// ErrCheckExecution means a diagnostic check could not run
	ErrCheckExecution = errors.New("diagnostic check failed")
)

// GraphQueryError reports the concept whose neighborhood query failed
type GraphQueryError struct {
	Concept string
	Err     error
}

func (e *GraphQueryError) Error() string {
	return fmt.Sprintf("%v: concept %q: %v", ErrGraphQuery, e.Concept, e.Err)
}

func (e *GraphQueryError) Unwrap() error { return e.Err }

// Is matches ErrGraphQuery
func (e *GraphQueryError) Is(target error) bool { return target == ErrGraphQuery }

// CheckError reports the trigger and channel whose check could not run
type CheckError struct {
	Trigger string
	Channel string
	Check   string
	Err     error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%v: %s for trigger %q on channel %q: %v", ErrCheckExecution, e.Check, e.Trigger, e.Channel, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Is matches ErrCheckExecution
func (e *CheckError) Is(target error) bool { return target == ErrCheckExecution }

// connectionError wraps an acquisition failure
func connectionError(err error) error {
	return fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
}
