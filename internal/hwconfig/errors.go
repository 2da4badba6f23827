package hwconfig

import "errors"

var (
	ErrNotFound      = errors.New("hwconfig: device has no config table interface")
	ErrTransport     = errors.New("hwconfig: transport failure")
	ErrInvalidResult = errors.New("hwconfig: device reported an impossible result")
	ErrOutOfMemory   = errors.New("hwconfig: table allocation failed")
	ErrInvalidFormat = errors.New("hwconfig: malformed config table")

	ErrTransportRequired = errors.New("hwconfig: transport required")
	ErrArenaRequired     = errors.New("hwconfig: arena required")
)
