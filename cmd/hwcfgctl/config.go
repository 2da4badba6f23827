package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	DeviceAddr    string `toml:"device_addr"`
	DialTimeout   string `toml:"dial_timeout"`
	Variant       string `toml:"variant"`
	Profiles      string `toml:"profiles"`
	LoopbackBlob  string `toml:"loopback_blob"`
	MetricsAddr   string `toml:"metrics_addr"`
	MaxTableBytes int64  `toml:"max_table_bytes"`
}

type runConfig struct {
	DeviceAddr    string
	DialTimeout   time.Duration
	Variant       string
	ProfilesPath  string
	LoopbackBlob  string
	MetricsAddr   string
	MaxTableBytes uint32
}

func defaultRunConfig() runConfig {
	return runConfig{
		DialTimeout: 5 * time.Second,
		Variant:     "sim",
	}
}

func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("device_addr") {
		cfg.DeviceAddr = strings.TrimSpace(raw.DeviceAddr)
	}
	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return runConfig{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.DialTimeout = d
	}
	if meta.IsDefined("variant") {
		v := strings.TrimSpace(raw.Variant)
		if v != "" {
			cfg.Variant = v
		}
	}
	if meta.IsDefined("profiles") {
		cfg.ProfilesPath = strings.TrimSpace(raw.Profiles)
	}
	if meta.IsDefined("loopback_blob") {
		cfg.LoopbackBlob = strings.TrimSpace(raw.LoopbackBlob)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("max_table_bytes") {
		if raw.MaxTableBytes <= 0 || raw.MaxTableBytes > int64(^uint32(0)) {
			return runConfig{}, fmt.Errorf("max_table_bytes out of range: %d", raw.MaxTableBytes)
		}
		cfg.MaxTableBytes = uint32(raw.MaxTableBytes)
	}

	if err := cfg.validate(); err != nil {
		return runConfig{}, err
	}
	return cfg, nil
}

func (c runConfig) validate() error {
	if c.DeviceAddr == "" && c.LoopbackBlob == "" {
		return fmt.Errorf("config needs device_addr or loopback_blob")
	}
	if c.DeviceAddr != "" && c.LoopbackBlob != "" {
		return fmt.Errorf("device_addr and loopback_blob are mutually exclusive")
	}
	if c.Variant == "" {
		return fmt.Errorf("config missing variant")
	}
	return nil
}
