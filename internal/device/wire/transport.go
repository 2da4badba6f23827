package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/jljusten/hwcfgctl/internal/device"
)

var (
	ErrMessageIDMismatch = errors.New("wire: response message id mismatch")
	ErrUnknownWindow     = errors.New("wire: response addressed an unregistered staging window")
	ErrWindowOverrun     = errors.New("wire: response payload exceeds staging window")
)

// StreamTransport implements device.Transport over a byte stream. The
// device writes table bytes "to device-visible memory" by returning them in
// the response payload; the transport stages them into the destination
// window the request addressed, resolved through the arena.
//
// The exchange is strictly sequential: one request in flight at a time.
type StreamTransport struct {
	rw       io.ReadWriter
	resolver device.MemoryResolver
	limits   Limits
	nextID   uint64
}

// NewStreamTransport wraps rw. resolver must be the arena whose windows the
// caller passes as destination descriptors.
func NewStreamTransport(rw io.ReadWriter, resolver device.MemoryResolver) *StreamTransport {
	return &StreamTransport{
		rw:       rw,
		resolver: resolver,
		limits:   DefaultLimits(),
	}
}

// Send performs one blocking round trip.
func (t *StreamTransport) Send(ctx context.Context, a device.Action) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.applyDeadline(ctx)

	t.nextID++
	req := Request{
		MessageID: t.nextID,
		Action:    a.ID,
		AddrLo:    a.AddrLo,
		AddrHi:    a.AddrHi,
		Size:      a.Size,
	}
	if err := WriteRequest(t.rw, req); err != nil {
		return 0, fmt.Errorf("wire: send action %#x: %w", a.ID, err)
	}
	resp, err := ReadResponse(t.rw, t.limits)
	if err != nil {
		return 0, fmt.Errorf("wire: read reply for action %#x: %w", a.ID, err)
	}
	if resp.MessageID != req.MessageID {
		return 0, ErrMessageIDMismatch
	}
	if err := resp.Status.Err(); err != nil {
		return 0, err
	}
	if len(resp.Payload) > 0 {
		if err := t.stage(a, resp.Payload); err != nil {
			return 0, err
		}
	}
	return resp.Size, nil
}

func (t *StreamTransport) stage(a device.Action, payload []byte) error {
	addr := uint64(a.AddrHi)<<32 | uint64(a.AddrLo)
	window, ok := t.resolver.Resolve(addr)
	if !ok {
		return ErrUnknownWindow
	}
	if len(payload) > len(window) {
		return ErrWindowOverrun
	}
	copy(window, payload)
	return nil
}

func (t *StreamTransport) applyDeadline(ctx context.Context) {
	conn, ok := t.rw.(net.Conn)
	if !ok {
		return
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Time{})
	}
}
