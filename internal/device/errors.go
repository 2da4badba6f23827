package device

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchInterface = errors.New("device: no such interface")
)

// StatusError reports a non-success action status other than
// StatusNoSuchInterface.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device: action failed: %s", e.Status)
}
