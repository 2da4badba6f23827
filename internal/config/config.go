// Package config owns device-variant profiles: which variants carry a
// config table and how large a table they may report.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Profile describes one device variant.
type Profile struct {
	Variant        string `toml:"variant"`
	HasConfigTable bool   `toml:"has_config_table"`
	MaxTableBytes  uint32 `toml:"max_table_bytes"`
}

// Profiles is the variant table.
type Profiles struct {
	Devices []Profile `toml:"device"`
}

// Defaults returns the compiled-in variant table.
func Defaults() Profiles {
	return Profiles{
		Devices: []Profile{
			{Variant: "adl-p", HasConfigTable: true},
			{Variant: "tgl", HasConfigTable: false},
			{Variant: "dg1", HasConfigTable: false},
			{Variant: "sim", HasConfigTable: true},
		},
	}
}

// Load reads a profile table from a toml file.
func Load(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profiles{}, fmt.Errorf("profiles load failed (%s): %w", path, err)
	}
	var p Profiles
	if err := toml.Unmarshal(data, &p); err != nil {
		return Profiles{}, fmt.Errorf("profiles parse failed (%s): %w", path, err)
	}
	if err := Validate(p); err != nil {
		return Profiles{}, err
	}
	return p, nil
}

// Validate rejects empty and duplicate variant names.
func Validate(p Profiles) error {
	seen := make(map[string]struct{}, len(p.Devices))
	for i, d := range p.Devices {
		name := strings.TrimSpace(d.Variant)
		if name == "" {
			return fmt.Errorf("device[%d] missing variant", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("device[%d] duplicate variant %q", i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Lookup finds the profile for a variant name.
func (p Profiles) Lookup(variant string) (Profile, bool) {
	for _, d := range p.Devices {
		if d.Variant == variant {
			return d, true
		}
	}
	return Profile{}, false
}

// Gate returns the capability predicate for this profile.
func (d Profile) Gate() func() bool {
	return func() bool { return d.HasConfigTable }
}
