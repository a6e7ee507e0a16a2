package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "datadir":
		cfg.DataDir = value

	// Entropy collection
	case "entropy.source":
		cfg.Entropy.Source = value
	case "entropy.mode":
		cfg.Entropy.Mode = value
	case "entropy.bits":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Entropy.TargetBits = n

	// Mnemonic encoding
	case "mnemonic.scheme":
		cfg.Mnemonic.Scheme = value
	case "mnemonic.version":
		cfg.Mnemonic.ElectrumVersion = value
	case "mnemonic.words":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mnemonic.Words = n

	// Key derivation
	case "derive.path":
		cfg.Derivation.Path = value
	case "derive.compress_iterations":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Derivation.CompressIterations = n

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		return fmt.Errorf("unknown config key")
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1", "on":
		return true
	}
	return false
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string) error {
	content := `# Keysmith Configuration
#
# This file holds operator preferences only. Derivation constants
# (iteration counts, salts, curve parameters) are fixed by the formats
# keysmith implements and cannot be changed here.

# Data directory (default: ~/.keysmith)
# datadir = ~/.keysmith

# ============================================================================
# Entropy Collection
# ============================================================================

# Physical source: coinflip, d4, d6, d8, d10, d12, d16, d20, d100, byte
entropy.source = coinflip

# Bias correction: raw or von-neumann
# (von-neumann is only available for power-of-two sources)
entropy.mode = von-neumann

# Pool size to collect
entropy.bits = 128

# ============================================================================
# Mnemonic Encoding
# ============================================================================

# Phrase scheme: bip39 or electrum
mnemonic.scheme = bip39

# Electrum seed version to generate: legacy or segwit
mnemonic.version = segwit

# Phrase length: 12, 15, 18, 21 or 24
mnemonic.words = 12

# ============================================================================
# Key Derivation
# ============================================================================

# Default derivation path
derive.path = m

# PBKDF2 iterations when compressing oversized entropy pools
derive.compress_iterations = 2048

# ============================================================================
# Logging
# ============================================================================

log.level = warn
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
