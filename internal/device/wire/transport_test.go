package wire

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/jljusten/hwcfgctl/internal/device"
)

type mapResolver map[uint64][]byte

func (m mapResolver) Resolve(addr uint64) ([]byte, bool) {
	buf, ok := m[addr]
	return buf, ok
}

// serveOne answers a single request on conn with the given reply function.
func serveOne(t *testing.T, conn net.Conn, reply func(Request) Response) {
	t.Helper()
	go func() {
		defer conn.Close()
		req, err := ReadRequest(conn)
		if err != nil {
			return
		}
		_ = WriteResponse(conn, reply(req), DefaultLimits())
	}()
}

func TestStreamTransportDiscovery(t *testing.T) {
	host, dev := net.Pipe()
	defer host.Close()
	serveOne(t, dev, func(req Request) Response {
		if req.Action != device.ActionGetConfigBlob || req.Size != 0 {
			t.Errorf("unexpected request: %+v", req)
		}
		return Response{MessageID: req.MessageID, Status: device.StatusSuccess, Size: 0x20}
	})

	tr := NewStreamTransport(host, mapResolver{})
	size, err := tr.Send(context.Background(), device.Action{ID: device.ActionGetConfigBlob})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if size != 0x20 {
		t.Fatalf("size=%#x want 0x20", size)
	}
}

func TestStreamTransportStagesPayloadIntoWindow(t *testing.T) {
	host, dev := net.Pipe()
	defer host.Close()
	blob := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	serveOne(t, dev, func(req Request) Response {
		return Response{
			MessageID: req.MessageID,
			Status:    device.StatusSuccess,
			Size:      uint32(len(blob)),
			Payload:   blob,
		}
	})

	window := make([]byte, 4)
	resolver := mapResolver{0x10000: window}
	tr := NewStreamTransport(host, resolver)
	n, err := tr.Send(context.Background(), device.Action{
		ID:     device.ActionGetConfigBlob,
		AddrLo: 0x10000,
		Size:   4,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n != 4 || !bytes.Equal(window, blob) {
		t.Fatalf("n=%d window=%x", n, window)
	}
}

func TestStreamTransportMapsStatuses(t *testing.T) {
	cases := []struct {
		name   string
		status device.Status
		check  func(error) bool
	}{
		{"no such interface", device.StatusNoSuchInterface, func(err error) bool {
			return errors.Is(err, device.ErrNoSuchInterface)
		}},
		{"busy", device.StatusBusy, func(err error) bool {
			var serr *device.StatusError
			return errors.As(err, &serr) && serr.Status == device.StatusBusy
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host, dev := net.Pipe()
			defer host.Close()
			serveOne(t, dev, func(req Request) Response {
				return Response{MessageID: req.MessageID, Status: tc.status}
			})
			tr := NewStreamTransport(host, mapResolver{})
			_, err := tr.Send(context.Background(), device.Action{ID: device.ActionGetConfigBlob})
			if !tc.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStreamTransportRejectsMismatchedMessageID(t *testing.T) {
	host, dev := net.Pipe()
	defer host.Close()
	serveOne(t, dev, func(req Request) Response {
		return Response{MessageID: req.MessageID + 1, Status: device.StatusSuccess}
	})
	tr := NewStreamTransport(host, mapResolver{})
	_, err := tr.Send(context.Background(), device.Action{ID: device.ActionGetConfigBlob})
	if !errors.Is(err, ErrMessageIDMismatch) {
		t.Fatalf("expected ErrMessageIDMismatch, got %v", err)
	}
}

func TestStreamTransportRejectsUnknownWindow(t *testing.T) {
	host, dev := net.Pipe()
	defer host.Close()
	serveOne(t, dev, func(req Request) Response {
		return Response{
			MessageID: req.MessageID,
			Status:    device.StatusSuccess,
			Size:      2,
			Payload:   []byte{1, 2},
		}
	})
	tr := NewStreamTransport(host, mapResolver{})
	_, err := tr.Send(context.Background(), device.Action{
		ID:     device.ActionGetConfigBlob,
		AddrLo: 0x9999,
		Size:   2,
	})
	if !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestStreamTransportHonorsCancelledContext(t *testing.T) {
	host, dev := net.Pipe()
	defer host.Close()
	defer dev.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewStreamTransport(host, mapResolver{})
	if _, err := tr.Send(ctx, device.Action{ID: device.ActionGetConfigBlob}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
