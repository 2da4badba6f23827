package devicesim

import (
	"context"

	"github.com/jljusten/hwcfgctl/internal/device"
)

// Device is a simulated companion processor holding one config table blob.
//
// As an in-process device.Transport it delivers blob bytes straight into
// the staging window through Resolver. Fault fields let tests reproduce
// broken-device behavior.
type Device struct {
	// Blob is the stored config table. An empty blob reproduces the
	// device-reports-zero-size pathology.
	Blob []byte

	// Resolver maps destination addresses to staging windows. Required
	// for in-process use; the wire server does not use it.
	Resolver device.MemoryResolver

	// NoInterface makes every query fail with "no such interface".
	NoInterface bool

	// ForceStatus, when not StatusSuccess, is returned for every action.
	ForceStatus device.Status
}

// reply computes the device's answer to one action: status, reported size,
// and the bytes to deliver (nil when the descriptor was too small).
func (d *Device) reply(action, destSize uint32) (device.Status, uint32, []byte) {
	if d.ForceStatus != device.StatusSuccess {
		return d.ForceStatus, 0, nil
	}
	if d.NoInterface || action != device.ActionGetConfigBlob {
		return device.StatusNoSuchInterface, 0, nil
	}
	need := uint32(len(d.Blob))
	if need == 0 || destSize < need {
		return device.StatusSuccess, need, nil
	}
	return device.StatusSuccess, need, d.Blob
}

// Send implements device.Transport for loopback use.
func (d *Device) Send(ctx context.Context, a device.Action) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	status, size, payload := d.reply(a.ID, a.Size)
	if err := status.Err(); err != nil {
		return 0, err
	}
	if payload != nil {
		addr := uint64(a.AddrHi)<<32 | uint64(a.AddrLo)
		window, ok := d.Resolver.Resolve(addr)
		if !ok || len(window) < len(payload) {
			return 0, device.StatusInvalidArgument.Err()
		}
		copy(window, payload)
	}
	return size, nil
}
