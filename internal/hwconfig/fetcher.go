package hwconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/jljusten/hwcfgctl/internal/device"
)

// Fetcher drives the two-round retrieval protocol. Round one sends a zero
// destination descriptor and learns the required size from the reply; round
// two sends a real descriptor and has the device fill it.
type Fetcher struct {
	transport device.Transport
}

func NewFetcher(transport device.Transport) *Fetcher {
	return &Fetcher{transport: transport}
}

// DiscoverSize asks the device how large the config table is. A device
// that answers success with size zero is lying or broken: absence of the
// table is signaled by the capability gate or by ErrNotFound, never by an
// empty table.
func (f *Fetcher) DiscoverSize(ctx context.Context) (uint32, error) {
	size, err := f.transport.Send(ctx, device.Action{ID: device.ActionGetConfigBlob})
	if err != nil {
		return 0, mapSendError("size discovery", err)
	}
	if size == 0 {
		return 0, fmt.Errorf("%w: zero table size on discovery", ErrInvalidResult)
	}
	return size, nil
}

// Transfer asks the device to write the table into the staging window.
// It returns the byte count the device reports. The caller must have
// discovered a non-zero size first.
func (f *Fetcher) Transfer(ctx context.Context, m Mapping, size uint32) (uint32, error) {
	if size == 0 {
		return 0, fmt.Errorf("hwconfig: transfer requested before size discovery")
	}
	addr := m.Addr()
	n, err := f.transport.Send(ctx, device.Action{
		ID:     device.ActionGetConfigBlob,
		AddrLo: uint32(addr),
		AddrHi: uint32(addr >> 32),
		Size:   size,
	})
	if err != nil {
		return 0, mapSendError("transfer", err)
	}
	return n, nil
}

func mapSendError(op string, err error) error {
	if errors.Is(err, device.ErrNoSuchInterface) {
		return fmt.Errorf("hwconfig: %s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("hwconfig: %s: %w: %w", op, ErrTransport, err)
}
