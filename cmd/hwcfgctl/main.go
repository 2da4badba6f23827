package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/jljusten/hwcfgctl/internal/config"
	"github.com/jljusten/hwcfgctl/internal/device"
	"github.com/jljusten/hwcfgctl/internal/device/wire"
	"github.com/jljusten/hwcfgctl/internal/devicesim"
	"github.com/jljusten/hwcfgctl/internal/hwconfig"
	"github.com/jljusten/hwcfgctl/internal/logging"
	"github.com/jljusten/hwcfgctl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hwcfgctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to hwcfgctl toml config")
	deviceAddr := flag.String("device", "", "device service address (overrides config)")
	loopbackBlob := flag.String("blob", "", "serve a local blob file instead of dialing a device")
	variant := flag.String("variant", "", "device variant name (overrides config)")
	dump := flag.Bool("dump", true, "print table records after a successful fetch")
	flag.Parse()

	logging.ConfigureRuntime()
	log := logging.New("hwcfgctl")
	observability.RegisterMetrics()

	cfg := defaultRunConfig()
	if *configPath != "" {
		loaded, err := loadRunConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *deviceAddr != "" {
		cfg.DeviceAddr = *deviceAddr
		cfg.LoopbackBlob = ""
	}
	if *loopbackBlob != "" {
		cfg.LoopbackBlob = *loopbackBlob
		cfg.DeviceAddr = ""
	}
	if *variant != "" {
		cfg.Variant = *variant
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	profiles := config.Defaults()
	if cfg.ProfilesPath != "" {
		loaded, err := config.Load(cfg.ProfilesPath)
		if err != nil {
			return err
		}
		profiles = loaded
	}
	profile, ok := profiles.Lookup(cfg.Variant)
	if !ok {
		return fmt.Errorf("unknown device variant %q", cfg.Variant)
	}
	maxBytes := cfg.MaxTableBytes
	if maxBytes == 0 {
		maxBytes = profile.MaxTableBytes
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	arena := hwconfig.NewHeapArena()
	transport, closeTransport, err := buildTransport(cfg, arena)
	if err != nil {
		return err
	}
	defer closeTransport()

	table, err := hwconfig.NewTable(hwconfig.Config{
		Transport:     transport,
		Arena:         arena,
		Supported:     profile.Gate(),
		MaxTableBytes: maxBytes,
		Logger:        &log,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := table.Init(ctx); err != nil {
		return err
	}
	defer table.Fini()

	if !table.Populated() {
		log.Info().Str("variant", cfg.Variant).Msg("device has no config table")
		return nil
	}
	log.Info().Uint32("size", table.Size()).Msg("config table fetched")
	if *dump {
		dumpTable(table)
	}
	return nil
}

func buildTransport(cfg runConfig, arena *hwconfig.HeapArena) (device.Transport, func(), error) {
	if cfg.LoopbackBlob != "" {
		blob, err := os.ReadFile(cfg.LoopbackBlob)
		if err != nil {
			return nil, nil, fmt.Errorf("read blob: %w", err)
		}
		return &devicesim.Device{Blob: blob, Resolver: arena}, func() {}, nil
	}
	conn, err := net.DialTimeout("tcp", cfg.DeviceAddr, cfg.DialTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("dial device: %w", err)
	}
	return wire.NewStreamTransport(conn, arena), func() { conn.Close() }, nil
}

func dumpTable(table *hwconfig.Table) {
	it := table.Records()
	for {
		rec, ok := it.Next()
		if !ok {
			return
		}
		fmt.Printf("key=%#06x len=%d", rec.Key, rec.Length)
		for _, w := range rec.Words() {
			fmt.Printf(" 0x%08x", w)
		}
		fmt.Println()
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "hwcfgctl: metrics listener: %v\n", err)
	}
}
