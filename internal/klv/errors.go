package klv

import (
	"errors"
	"fmt"
)

var (
	ErrMisalignedSize  = errors.New("klv: table size not a multiple of word size")
	ErrTruncatedHeader = errors.New("klv: truncated record header")
	ErrPayloadOverrun  = errors.New("klv: record payload extends past end of table")
)

// FormatError reports a structural violation and the byte offset at which
// the scan detected it.
type FormatError struct {
	Offset int
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *FormatError) Unwrap() error { return e.Err }
