package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsLookup(t *testing.T) {
	p := Defaults()
	adlp, ok := p.Lookup("adl-p")
	if !ok || !adlp.HasConfigTable {
		t.Fatalf("adl-p must carry a config table: ok=%v profile=%+v", ok, adlp)
	}
	tgl, ok := p.Lookup("tgl")
	if !ok || tgl.HasConfigTable {
		t.Fatalf("tgl must not carry a config table: ok=%v profile=%+v", ok, tgl)
	}
	if _, ok := p.Lookup("nope"); ok {
		t.Fatalf("unknown variant must not resolve")
	}
}

func TestGateReflectsProfile(t *testing.T) {
	if !(Profile{HasConfigTable: true}).Gate()() {
		t.Fatalf("gate must pass for supported variant")
	}
	if (Profile{}).Gate()() {
		t.Fatalf("gate must fail for unsupported variant")
	}
}

func TestLoadParsesProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	body := `
[[device]]
variant = "adl-p"
has_config_table = true
max_table_bytes = 65536

[[device]]
variant = "tgl"
has_config_table = false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	adlp, ok := p.Lookup("adl-p")
	if !ok || adlp.MaxTableBytes != 65536 {
		t.Fatalf("adl-p: ok=%v profile=%+v", ok, adlp)
	}
}

func TestValidateRejectsBadTables(t *testing.T) {
	cases := []struct {
		name string
		p    Profiles
	}{
		{"empty variant", Profiles{Devices: []Profile{{Variant: " "}}}},
		{"duplicate variant", Profiles{Devices: []Profile{
			{Variant: "adl-p"}, {Variant: "adl-p"},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.p); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
