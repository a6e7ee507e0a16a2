package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Validates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()) error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Entropy.Source = "d7" }},
		{"bad mode", func(c *Config) { c.Entropy.Mode = "corrected" }},
		{"von-neumann on d6", func(c *Config) { c.Entropy.Source = "d6"; c.Entropy.Mode = "von-neumann" }},
		{"zero bits", func(c *Config) { c.Entropy.TargetBits = 0 }},
		{"bad scheme", func(c *Config) { c.Mnemonic.Scheme = "diceware" }},
		{"2fa version", func(c *Config) { c.Mnemonic.ElectrumVersion = "segwit-2fa" }},
		{"bad word count", func(c *Config) { c.Mnemonic.Words = 13 }},
		{"bad path", func(c *Config) { c.Derivation.Path = "m/x" }},
		{"zero iterations", func(c *Config) { c.Derivation.CompressIterations = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Validate() succeeded, want error")
			}
		})
	}

	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) succeeded, want error")
	}

	// Raw mode is fine for non-power-of-two sources.
	cfg := Default()
	cfg.Entropy.Source = "d6"
	cfg.Entropy.Mode = "raw"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(d6 raw) error: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keysmith.conf")
	content := `# comment
entropy.source = d20
entropy.mode = raw
entropy.bits = 256

mnemonic.scheme = "electrum"
mnemonic.version = legacy
mnemonic.words = 24

derive.path = m/44'/0'/0'
log.level = debug
log.json = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}

	if cfg.Entropy.Source != "d20" || cfg.Entropy.Mode != "raw" || cfg.Entropy.TargetBits != 256 {
		t.Errorf("entropy config = %+v", cfg.Entropy)
	}
	if cfg.Mnemonic.Scheme != "electrum" || cfg.Mnemonic.ElectrumVersion != "legacy" || cfg.Mnemonic.Words != 24 {
		t.Errorf("mnemonic config = %+v", cfg.Mnemonic)
	}
	if cfg.Derivation.Path != "m/44'/0'/0'" {
		t.Errorf("derive.path = %q", cfg.Derivation.Path)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("log config = %+v", cfg.Log)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("LoadFile(missing) error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("LoadFile(missing) = %v, want empty", values)
	}
}

func TestApplyFileConfig_UnknownKey(t *testing.T) {
	cfg := Default()
	err := ApplyFileConfig(cfg, map[string]string{"p2p.port": "30303"})
	if err == nil {
		t.Error("ApplyFileConfig() accepted unknown key")
	}
}

func TestApplyFlags_Precedence(t *testing.T) {
	cfg := Default()
	f := &Flags{
		EntropySource: "byte",
		Words:         18,
		LogLevel:      "info",
	}
	ApplyFlags(cfg, f)

	if cfg.Entropy.Source != "byte" {
		t.Errorf("entropy.source = %q, want byte", cfg.Entropy.Source)
	}
	if cfg.Mnemonic.Words != 18 {
		t.Errorf("mnemonic.words = %d, want 18", cfg.Mnemonic.Words)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log.level = %q, want info", cfg.Log.Level)
	}
	// Untouched settings keep their defaults.
	if cfg.Entropy.Mode != "von-neumann" {
		t.Errorf("entropy.mode = %q, want von-neumann", cfg.Entropy.Mode)
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keysmith.conf")
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("WriteDefaultConfig() error: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("generated default config is invalid: %v", err)
	}
}
