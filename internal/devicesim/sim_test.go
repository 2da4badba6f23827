package devicesim_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jljusten/hwcfgctl/internal/device"
	"github.com/jljusten/hwcfgctl/internal/device/wire"
	"github.com/jljusten/hwcfgctl/internal/devicesim"
	"github.com/jljusten/hwcfgctl/internal/hwconfig"
	"github.com/jljusten/hwcfgctl/internal/klv"
	"github.com/jljusten/hwcfgctl/internal/testutil/testlog"
)

func testBlob() []byte {
	buf := klv.AppendRecord(nil, 0, []uint32{8})
	return klv.AppendRecord(buf, 1, []uint32{0xFFFFFFFF, 0xFFFFFFFF, 0xFF000000})
}

func TestLoopbackDeviceAnswersDiscoveryThenTransfer(t *testing.T) {
	testlog.Start(t)
	arena := hwconfig.NewHeapArena()
	dev := &devicesim.Device{Blob: testBlob(), Resolver: arena}

	size, err := dev.Send(context.Background(), device.Action{ID: device.ActionGetConfigBlob})
	if err != nil {
		t.Fatalf("discovery: %v", err)
	}
	if size != 0x20 {
		t.Fatalf("discovered size %#x, want 0x20", size)
	}

	mapping, err := arena.AllocateAndMap(size)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	defer mapping.Release()
	addr := mapping.Addr()
	n, err := dev.Send(context.Background(), device.Action{
		ID:     device.ActionGetConfigBlob,
		AddrLo: uint32(addr),
		AddrHi: uint32(addr >> 32),
		Size:   size,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if n != size {
		t.Fatalf("transfer reported %d, want %d", n, size)
	}
	if err := klv.Validate(mapping.Bytes()); err != nil {
		t.Fatalf("delivered blob invalid: %v", err)
	}
}

func TestServedTableEndToEnd(t *testing.T) {
	testlog.Start(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	srv := devicesim.NewServer(&devicesim.Device{Blob: testBlob()}, zerolog.Nop())
	go srv.Serve(l)

	conn, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	arena := hwconfig.NewHeapArena()
	table, err := hwconfig.NewTable(hwconfig.Config{
		Transport: wire.NewStreamTransport(conn, arena),
		Arena:     arena,
	})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := table.Init(ctx); err != nil {
		t.Fatalf("init over wire: %v", err)
	}
	if !table.Populated() || table.Size() != 0x20 {
		t.Fatalf("populated=%v size=%#x", table.Populated(), table.Size())
	}
	rec, ok := table.Lookup(1)
	if !ok || rec.Length != 3 {
		t.Fatalf("lookup(1): ok=%v rec=%+v", ok, rec)
	}
}

func TestServerAnswersNoInterface(t *testing.T) {
	testlog.Start(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	srv := devicesim.NewServer(&devicesim.Device{NoInterface: true}, zerolog.Nop())
	go srv.Serve(l)

	conn, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	arena := hwconfig.NewHeapArena()
	table, err := hwconfig.NewTable(hwconfig.Config{
		Transport: wire.NewStreamTransport(conn, arena),
		Arena:     arena,
	})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if err := table.Init(context.Background()); err != nil {
		t.Fatalf("absence must be a clean no-op, got %v", err)
	}
	if table.Populated() {
		t.Fatalf("table must stay absent")
	}
}
