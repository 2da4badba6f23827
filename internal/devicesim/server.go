package devicesim

import (
	"errors"
	"net"

	"github.com/rs/zerolog"

	"github.com/jljusten/hwcfgctl/internal/device"
	"github.com/jljusten/hwcfgctl/internal/device/wire"
)

// Server serves the wire-framed action protocol from a listener. The
// protocol is strictly sequential, so connections are handled one at a
// time and requests on a connection are answered in order.
type Server struct {
	dev    *Device
	limits wire.Limits
	log    zerolog.Logger
}

func NewServer(dev *Device, log zerolog.Logger) *Server {
	return &Server{
		dev:    dev,
		limits: wire.DefaultLimits(),
		log:    log,
	}
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	s.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("host connected")
	for {
		req, err := wire.ReadRequest(conn)
		if err != nil {
			if !errors.Is(err, wire.ErrShortHeader) {
				s.log.Warn().Err(err).Msg("bad request frame")
			}
			return
		}
		status, size, payload := s.dev.reply(req.Action, req.Size)
		resp := wire.Response{
			MessageID: req.MessageID,
			Status:    status,
			Size:      size,
			Payload:   payload,
		}
		if err := wire.WriteResponse(conn, resp, s.limits); err != nil {
			s.log.Warn().Err(err).Msg("write response")
			return
		}
		s.log.Debug().
			Uint32("action", req.Action).
			Uint32("dest_size", req.Size).
			Stringer("status", status).
			Uint32("size", size).
			Msg("served action")
	}
}

var _ device.Transport = (*Device)(nil)
