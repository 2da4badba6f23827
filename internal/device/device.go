package device

import "context"

// Action IDs from the companion firmware contract.
const (
	ActionGetConfigBlob uint32 = 0x4100
)

// Action is one request to the device. AddrHi carries the upper 32 bits of
// the destination address and is zero for every currently defined action.
type Action struct {
	ID     uint32
	AddrLo uint32
	AddrHi uint32
	Size   uint32
}

// Transport issues one action and blocks for the reply. On success it
// returns the size the device reported: the required table size when the
// supplied destination was too small, otherwise the byte count written.
// There is no pipelining and no cancellation of an in-flight exchange; the
// context is consulted before the round trip and applied as a deadline
// where the underlying link supports one.
type Transport interface {
	Send(ctx context.Context, a Action) (uint32, error)
}

// MemoryResolver maps a device-visible address back to the host view of the
// staging window registered at that address. Implemented by the staging
// arena; consumed by transports and simulators that deliver blob bytes.
type MemoryResolver interface {
	Resolve(addr uint64) ([]byte, bool)
}
