package device

import "fmt"

// Status is the device-reported outcome of an action.
type Status uint32

const (
	StatusSuccess         Status = 0
	StatusNoSuchInterface Status = 1
	StatusInvalidArgument Status = 2
	StatusBusy            Status = 3
	StatusInternalError   Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoSuchInterface:
		return "no such interface"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusBusy:
		return "busy"
	case StatusInternalError:
		return "internal error"
	default:
		return fmt.Sprintf("status %d", uint32(s))
	}
}

// Err maps a status to the transport error taxonomy: nil on success,
// ErrNoSuchInterface for the dedicated "query does not exist" status, and a
// StatusError for everything else.
func (s Status) Err() error {
	switch s {
	case StatusSuccess:
		return nil
	case StatusNoSuchInterface:
		return ErrNoSuchInterface
	default:
		return &StatusError{Status: s}
	}
}
