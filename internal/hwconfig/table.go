package hwconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jljusten/hwcfgctl/internal/device"
	"github.com/jljusten/hwcfgctl/internal/klv"
	"github.com/jljusten/hwcfgctl/internal/observability"
)

// DefaultMaxTableBytes caps the discovered size before anything is
// allocated. A device reporting more than this is treated as broken.
const DefaultMaxTableBytes = 1 << 20

// Config wires a Table to its collaborators.
type Config struct {
	Transport device.Transport
	Arena     Arena

	// Supported is the static per-variant capability gate. Nil means
	// supported. When it reports false, Init is a clean no-op.
	Supported func() bool

	// MaxTableBytes bounds the discovered size. Zero selects
	// DefaultMaxTableBytes.
	MaxTableBytes uint32

	// Logger for operational anomalies. Nil disables logging.
	Logger *zerolog.Logger

	// allocate is the owned-buffer allocator, replaceable in tests to
	// exercise allocation failure.
	allocate func(uint32) ([]byte, error)
}

func (c Config) withDefaults() Config {
	if c.MaxTableBytes == 0 {
		c.MaxTableBytes = DefaultMaxTableBytes
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	if c.allocate == nil {
		c.allocate = func(size uint32) ([]byte, error) {
			return make([]byte, size), nil
		}
	}
	return c
}

// Table holds the retrieved, validated config table. Created empty
// (Absent); populated exactly once by a successful Init; immutable and safe
// for unsynchronized concurrent reads thereafter.
type Table struct {
	cfg     Config
	fetcher *Fetcher

	size uint32
	buf  []byte
}

func NewTable(cfg Config) (*Table, error) {
	if cfg.Transport == nil {
		return nil, ErrTransportRequired
	}
	if cfg.Arena == nil {
		return nil, ErrArenaRequired
	}
	cfg = cfg.withDefaults()
	return &Table{
		cfg:     cfg,
		fetcher: NewFetcher(cfg.Transport),
	}, nil
}

// Init retrieves and validates the config table.
//
// Absence is not an error: a variant whose capability gate reports no
// table, or a device that answers the query with "no such interface",
// leaves the table Absent and returns nil. Every other failure also leaves
// the table Absent, with all partially acquired resources released, and is
// returned to the caller. There are no retries.
func (t *Table) Init(ctx context.Context) error {
	start := time.Now()

	if t.cfg.Supported != nil && !t.cfg.Supported() {
		t.cfg.Logger.Debug().Msg("config table not supported on this variant")
		observability.RecordFetch("unsupported", time.Since(start))
		return nil
	}

	size, err := t.fetcher.DiscoverSize(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.cfg.Logger.Debug().Msg("device reports no config table interface")
			observability.RecordFetch("absent", time.Since(start))
			return nil
		}
		observability.RecordFetch(outcomeForError(err), time.Since(start))
		return err
	}
	if size > t.cfg.MaxTableBytes {
		err := fmt.Errorf("%w: discovered size %d exceeds cap %d",
			ErrInvalidResult, size, t.cfg.MaxTableBytes)
		observability.RecordFetch("invalid_result", time.Since(start))
		return err
	}

	buf, err := t.cfg.allocate(size)
	if err != nil {
		err := fmt.Errorf("%w: %d bytes: %w", ErrOutOfMemory, size, err)
		observability.RecordFetch("oom", time.Since(start))
		return err
	}

	if err := t.fill(ctx, buf, size); err != nil {
		observability.RecordFetch(outcomeForError(err), time.Since(start))
		return err
	}

	if err := klv.Validate(buf); err != nil {
		var ferr *klv.FormatError
		if errors.As(err, &ferr) {
			t.cfg.Logger.Error().
				Int("offset", ferr.Offset).
				Uint32("size", size).
				Msg("malformed config table from device")
			observability.RecordValidateFailure(validateReason(ferr.Err))
		}
		observability.RecordFetch("invalid_format", time.Since(start))
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	t.buf = buf
	t.size = size
	observability.RecordFetch("populated", time.Since(start))
	observability.SetTableBytes(size)
	t.cfg.Logger.Info().Uint32("size", size).Msg("config table populated")
	return nil
}

// fill stages a window, runs the transfer round, and copies the result
// into buf. The window is released on every path.
func (t *Table) fill(ctx context.Context, buf []byte, size uint32) error {
	mapping, err := t.cfg.Arena.AllocateAndMap(size)
	if err != nil {
		return fmt.Errorf("%w: staging window of %d bytes: %w", ErrOutOfMemory, size, err)
	}
	defer mapping.Release()

	n, err := t.fetcher.Transfer(ctx, mapping, size)
	if err != nil {
		return err
	}
	if n != size {
		return fmt.Errorf("%w: transfer reported %d bytes, expected %d",
			ErrInvalidResult, n, size)
	}
	copy(buf, mapping.Bytes()[:size])
	return nil
}

// Fini releases the table buffer and returns to Absent. Idempotent.
func (t *Table) Fini() {
	t.buf = nil
	t.size = 0
	observability.SetTableBytes(0)
}

// Populated reports whether a validated table is held.
func (t *Table) Populated() bool { return t.buf != nil }

// Size is the table size in bytes, zero when Absent.
func (t *Table) Size() uint32 { return t.size }

// Raw exposes the validated buffer without copying for external attribute
// lookup layers. Callers must treat it as read-only; Records and Lookup are
// the supported scan paths. Nil when Absent.
func (t *Table) Raw() []byte { return t.buf }

// Records returns a fresh restartable walk over the table.
func (t *Table) Records() *klv.Iterator { return klv.NewIterator(t.buf) }

// Lookup scans for the first record with the given key.
func (t *Table) Lookup(key uint32) (klv.Record, bool) { return klv.Lookup(t.buf, key) }

func outcomeForError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidResult):
		return "invalid_result"
	case errors.Is(err, ErrOutOfMemory):
		return "oom"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	default:
		return "error"
	}
}

func validateReason(err error) string {
	switch {
	case errors.Is(err, klv.ErrMisalignedSize):
		return "misaligned_size"
	case errors.Is(err, klv.ErrTruncatedHeader):
		return "truncated_header"
	case errors.Is(err, klv.ErrPayloadOverrun):
		return "payload_overrun"
	default:
		return "other"
	}
}
