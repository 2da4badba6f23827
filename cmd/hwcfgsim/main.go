package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/jljusten/hwcfgctl/internal/devicesim"
	"github.com/jljusten/hwcfgctl/internal/klv"
	"github.com/jljusten/hwcfgctl/internal/logging"
	"github.com/jljusten/hwcfgctl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hwcfgsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "127.0.0.1:9470", "listen address for the action protocol")
	blobPath := flag.String("blob", "", "path to the config table blob to serve")
	metricsAddr := flag.String("metrics", "", "optional /metrics listen address")
	noInterface := flag.Bool("no-interface", false, "answer every query with 'no such interface'")
	flag.Parse()

	logging.ConfigureRuntime()
	log := logging.New("hwcfgsim")
	observability.RegisterMetrics()

	dev := &devicesim.Device{NoInterface: *noInterface}
	if *blobPath != "" {
		blob, err := os.ReadFile(*blobPath)
		if err != nil {
			return fmt.Errorf("read blob: %w", err)
		}
		// Refuse to serve a table hosts would reject.
		if err := klv.Validate(blob); err != nil {
			return fmt.Errorf("blob %s: %w", *blobPath, err)
		}
		dev.Blob = blob
	} else if !*noInterface {
		return fmt.Errorf("a blob file is required unless -no-interface is set")
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics listener")
			}
		}()
	}

	l, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.Info().
		Str("addr", l.Addr().String()).
		Int("blob_bytes", len(dev.Blob)).
		Msg("serving config table")
	return devicesim.NewServer(dev, log).Serve(l)
}
