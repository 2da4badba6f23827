package hwconfig

import (
	"errors"
	"sync"
)

var ErrZeroSizeWindow = errors.New("hwconfig: zero-size staging window")

// Mapping is one device-visible staging window with a host view. It is
// scoped to a single fetch: acquired immediately before the transfer
// request, released immediately after, on success and failure alike.
type Mapping interface {
	// Addr is the device-visible address of the window.
	Addr() uint64
	// Bytes is the host view of the window.
	Bytes() []byte
	// Release tears the window down. Safe to call more than once.
	Release()
}

// Arena allocates staging windows addressable by the device.
type Arena interface {
	AllocateAndMap(size uint32) (Mapping, error)
}

// HeapArena is the host-memory arena. Windows are plain buffers registered
// under synthetic device addresses; it implements device.MemoryResolver so
// transports and simulators can deliver blob bytes into a window by
// address.
type HeapArena struct {
	mu      sync.Mutex
	next    uint64
	windows map[uint64][]byte
}

const (
	arenaBase  = 0x10000
	arenaAlign = 0x1000
)

func NewHeapArena() *HeapArena {
	return &HeapArena{
		next:    arenaBase,
		windows: make(map[uint64][]byte),
	}
}

func (a *HeapArena) AllocateAndMap(size uint32) (Mapping, error) {
	if size == 0 {
		return nil, ErrZeroSizeWindow
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	addr := a.next
	span := (uint64(size) + arenaAlign - 1) &^ uint64(arenaAlign-1)
	a.next += span

	buf := make([]byte, size)
	a.windows[addr] = buf
	return &heapMapping{arena: a, addr: addr, buf: buf}, nil
}

// Resolve implements device.MemoryResolver.
func (a *HeapArena) Resolve(addr uint64) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.windows[addr]
	return buf, ok
}

type heapMapping struct {
	arena    *HeapArena
	addr     uint64
	buf      []byte
	released bool
}

func (m *heapMapping) Addr() uint64  { return m.addr }
func (m *heapMapping) Bytes() []byte { return m.buf }

func (m *heapMapping) Release() {
	m.arena.mu.Lock()
	defer m.arena.mu.Unlock()
	if m.released {
		return
	}
	delete(m.arena.windows, m.addr)
	m.released = true
}
