// Package config handles application configuration.
//
// Everything here is operator preference: default entropy sources, phrase
// schemes and output settings. The derivation constants themselves
// (iteration counts, salts, curve parameters) are fixed by the formats
// the toolkit implements and are never configurable.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds runtime configuration for the keysmith tools.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`

	// Entropy collection
	Entropy EntropyConfig

	// Mnemonic encoding
	Mnemonic MnemonicConfig

	// Key derivation
	Derivation DerivationConfig

	// Logging
	Log LogConfig
}

// EntropyConfig holds entropy collection defaults.
type EntropyConfig struct {
	Source     string `conf:"entropy.source"` // coinflip, d4..d100, byte
	Mode       string `conf:"entropy.mode"`   // raw or von-neumann
	TargetBits int    `conf:"entropy.bits"`
}

// MnemonicConfig holds phrase encoding defaults.
type MnemonicConfig struct {
	Scheme          string `conf:"mnemonic.scheme"`  // bip39 or electrum
	ElectrumVersion string `conf:"mnemonic.version"` // legacy or segwit
	Words           int    `conf:"mnemonic.words"`
}

// DerivationConfig holds key derivation defaults.
type DerivationConfig struct {
	Path               string `conf:"derive.path"`
	CompressIterations int    `conf:"derive.compress_iterations"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.keysmith
//	macOS:   ~/Library/Application Support/Keysmith
//	Windows: %APPDATA%\Keysmith
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keysmith"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Keysmith")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Keysmith")
		}
		return filepath.Join(home, "AppData", "Roaming", "Keysmith")
	default:
		return filepath.Join(home, ".keysmith")
	}
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "keysmith.conf")
}
