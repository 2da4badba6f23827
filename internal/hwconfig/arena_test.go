package hwconfig

import (
	"errors"
	"testing"
)

func TestHeapArenaAllocateResolveRelease(t *testing.T) {
	arena := NewHeapArena()
	mapping, err := arena.AllocateAndMap(64)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(mapping.Bytes()) != 64 {
		t.Fatalf("window size %d, want 64", len(mapping.Bytes()))
	}

	window, ok := arena.Resolve(mapping.Addr())
	if !ok {
		t.Fatalf("resolve failed for live window")
	}
	window[0] = 0xEE
	if mapping.Bytes()[0] != 0xEE {
		t.Fatalf("resolved window is not the mapped window")
	}

	mapping.Release()
	if _, ok := arena.Resolve(mapping.Addr()); ok {
		t.Fatalf("released window still resolvable")
	}
	mapping.Release() // double release must be safe
}

func TestHeapArenaDistinctAddresses(t *testing.T) {
	arena := NewHeapArena()
	a, err := arena.AllocateAndMap(16)
	if err != nil {
		t.Fatalf("allocate a: %v", err)
	}
	b, err := arena.AllocateAndMap(16)
	if err != nil {
		t.Fatalf("allocate b: %v", err)
	}
	if a.Addr() == b.Addr() {
		t.Fatalf("windows share address %#x", a.Addr())
	}
}

func TestHeapArenaRejectsZeroSize(t *testing.T) {
	arena := NewHeapArena()
	_, err := arena.AllocateAndMap(0)
	if !errors.Is(err, ErrZeroSizeWindow) {
		t.Fatalf("expected ErrZeroSizeWindow, got %v", err)
	}
}
