package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed global command-line flags. Subcommands parse their
// own flag sets; only settings with config-file equivalents live here.
type Flags struct {
	// Core
	DataDir string
	Config  string

	// Entropy collection
	EntropySource string
	EntropyMode   string
	EntropyBits   int

	// Mnemonic encoding
	Scheme          string
	ElectrumVersion string
	Words           int

	// Key derivation
	Path               string
	CompressIterations int

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args (subcommand and its flags)
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// RegisterFlags binds the global flags onto a flag set.
func RegisterFlags(fs *flag.FlagSet, f *Flags) {
	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Entropy collection
	fs.StringVar(&f.EntropySource, "source", "", "Entropy source (coinflip, d4..d100, byte)")
	fs.StringVar(&f.EntropyMode, "mode", "", "Bias correction mode (raw or von-neumann)")
	fs.IntVar(&f.EntropyBits, "bits", 0, "Entropy pool size in bits")

	// Mnemonic encoding
	fs.StringVar(&f.Scheme, "scheme", "", "Mnemonic scheme (bip39 or electrum)")
	fs.StringVar(&f.ElectrumVersion, "electrum-version", "", "Electrum seed version to generate (legacy or segwit)")
	fs.IntVar(&f.Words, "words", 0, "Phrase length (12, 15, 18, 21 or 24)")

	// Key derivation
	fs.StringVar(&f.Path, "path", "", "Derivation path (e.g. m/44'/0'/0'/0/0)")
	fs.IntVar(&f.CompressIterations, "compress-iterations", 0, "PBKDF2 iterations for entropy compression")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Entropy collection
	if f.EntropySource != "" {
		cfg.Entropy.Source = f.EntropySource
	}
	if f.EntropyMode != "" {
		cfg.Entropy.Mode = f.EntropyMode
	}
	if f.EntropyBits != 0 {
		cfg.Entropy.TargetBits = f.EntropyBits
	}

	// Mnemonic encoding
	if f.Scheme != "" {
		cfg.Mnemonic.Scheme = f.Scheme
	}
	if f.ElectrumVersion != "" {
		cfg.Mnemonic.ElectrumVersion = f.ElectrumVersion
	}
	if f.Words != 0 {
		cfg.Mnemonic.Words = f.Words
	}

	// Key derivation
	if f.Path != "" {
		cfg.Derivation.Path = f.Path
	}
	if f.CompressIterations != 0 {
		cfg.Derivation.CompressIterations = f.CompressIterations
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet reports whether the named flag was explicitly provided.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// Load builds the effective configuration: defaults, then the config
// file, then flags (highest precedence).
func Load(fs *flag.FlagSet, f *Flags) (*Config, error) {
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	cfg := Default()
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Auto-create the data directory and default config on first use.
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := f.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, f)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EnsureDataDirs creates the data directory structure and a default
// config file if they don't already exist. Safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
