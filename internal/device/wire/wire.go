// Package wire owns the framed stream encoding of device actions.
//
// Ownership boundary:
// - request/response frame encode and decode
// - the stream-backed Transport implementation
//
// Frame headers are big-endian. Table payload bytes inside a response are an
// opaque little-endian word stream owned by package klv; wire never
// interprets them.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/jljusten/hwcfgctl/internal/device"
)

const (
	Magic        uint32 = 0x48574346 // "HWCF"
	Version      uint16 = 1
	KindRequest  uint16 = 1
	KindResponse uint16 = 2
	HeaderLen           = 36
)

var (
	ErrShortHeader        = errors.New("wire: short frame header")
	ErrInvalidMagic       = errors.New("wire: invalid magic")
	ErrUnsupportedVersion = errors.New("wire: unsupported version")
	ErrUnexpectedKind     = errors.New("wire: unexpected frame kind")
	ErrPayloadTooLarge    = errors.New("wire: payload too large")
	ErrTruncatedPayload   = errors.New("wire: truncated payload")
)

// Request is one action frame sent to the device. Requests never carry a
// payload.
type Request struct {
	MessageID uint64
	Action    uint32
	AddrLo    uint32
	AddrHi    uint32
	Size      uint32
}

// Response is the device's reply. Size is the device-reported table size;
// Payload carries the blob bytes when the request descriptor was adequate
// and is empty on discovery or under-provisioned requests.
type Response struct {
	MessageID uint64
	Status    device.Status
	Size      uint32
	Payload   []byte
}

// Limits constrains frame decode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: 1 << 20}
}

type header struct {
	magic      uint32
	version    uint16
	kind       uint16
	messageID  uint64
	code       uint32 // action on requests, status on responses
	addrLo     uint32
	addrHi     uint32
	size       uint32
	payloadLen uint32
}

func encodeHeader(h header) []byte {
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], h.magic)
	binary.BigEndian.PutUint16(buf[4:6], h.version)
	binary.BigEndian.PutUint16(buf[6:8], h.kind)
	binary.BigEndian.PutUint64(buf[8:16], h.messageID)
	binary.BigEndian.PutUint32(buf[16:20], h.code)
	binary.BigEndian.PutUint32(buf[20:24], h.addrLo)
	binary.BigEndian.PutUint32(buf[24:28], h.addrHi)
	binary.BigEndian.PutUint32(buf[28:32], h.size)
	binary.BigEndian.PutUint32(buf[32:36], h.payloadLen)
	return buf
}

func readHeader(r io.Reader, wantKind uint16) (header, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return header{}, ErrShortHeader
		}
		return header{}, err
	}
	h := header{
		magic:      binary.BigEndian.Uint32(fixed[0:4]),
		version:    binary.BigEndian.Uint16(fixed[4:6]),
		kind:       binary.BigEndian.Uint16(fixed[6:8]),
		messageID:  binary.BigEndian.Uint64(fixed[8:16]),
		code:       binary.BigEndian.Uint32(fixed[16:20]),
		addrLo:     binary.BigEndian.Uint32(fixed[20:24]),
		addrHi:     binary.BigEndian.Uint32(fixed[24:28]),
		size:       binary.BigEndian.Uint32(fixed[28:32]),
		payloadLen: binary.BigEndian.Uint32(fixed[32:36]),
	}
	if h.magic != Magic {
		return header{}, ErrInvalidMagic
	}
	if h.version != Version {
		return header{}, ErrUnsupportedVersion
	}
	if h.kind != wantKind {
		return header{}, ErrUnexpectedKind
	}
	return h, nil
}

// WriteRequest writes one request frame to w.
func WriteRequest(w io.Writer, req Request) error {
	buf := encodeHeader(header{
		magic:     Magic,
		version:   Version,
		kind:      KindRequest,
		messageID: req.MessageID,
		code:      req.Action,
		addrLo:    req.AddrLo,
		addrHi:    req.AddrHi,
		size:      req.Size,
	})
	_, err := w.Write(buf)
	return err
}

// ReadRequest reads one request frame from r.
func ReadRequest(r io.Reader) (Request, error) {
	h, err := readHeader(r, KindRequest)
	if err != nil {
		return Request{}, err
	}
	if h.payloadLen != 0 {
		return Request{}, fmt.Errorf("%w: request carries %d payload bytes", ErrPayloadTooLarge, h.payloadLen)
	}
	return Request{
		MessageID: h.messageID,
		Action:    h.code,
		AddrLo:    h.addrLo,
		AddrHi:    h.addrHi,
		Size:      h.size,
	}, nil
}

// WriteResponse writes one response frame to w.
func WriteResponse(w io.Writer, resp Response, limits Limits) error {
	if uint64(len(resp.Payload)) > uint64(limits.MaxPayloadBytes) {
		return ErrPayloadTooLarge
	}
	buf := encodeHeader(header{
		magic:      Magic,
		version:    Version,
		kind:       KindResponse,
		messageID:  resp.MessageID,
		code:       uint32(resp.Status),
		size:       resp.Size,
		payloadLen: uint32(len(resp.Payload)),
	})
	if _, err := w.Write(buf); err != nil {
		return err
	}
	if len(resp.Payload) > 0 {
		if _, err := w.Write(resp.Payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadResponse reads one response frame from r.
func ReadResponse(r io.Reader, limits Limits) (Response, error) {
	h, err := readHeader(r, KindResponse)
	if err != nil {
		return Response{}, err
	}
	if h.payloadLen > limits.MaxPayloadBytes {
		return Response{}, ErrPayloadTooLarge
	}
	resp := Response{
		MessageID: h.messageID,
		Status:    device.Status(h.code),
		Size:      h.size,
	}
	if h.payloadLen > 0 {
		resp.Payload = make([]byte, h.payloadLen)
		if _, err := io.ReadFull(r, resp.Payload); err != nil {
			return Response{}, ErrTruncatedPayload
		}
	}
	return resp, nil
}
