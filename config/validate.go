package config

import (
	"fmt"

	"github.com/keysmith-security/keysmith/internal/entropy"
	"github.com/keysmith-security/keysmith/internal/hdkey"
	"github.com/keysmith-security/keysmith/internal/mnemonic"
)

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	source, ok := entropy.ParseSource(cfg.Entropy.Source)
	if !ok {
		return fmt.Errorf("entropy.source %q is not a known source", cfg.Entropy.Source)
	}
	switch cfg.Entropy.Mode {
	case "raw":
	case "von-neumann":
		if !source.SupportsCorrection() {
			return fmt.Errorf("entropy.mode von-neumann is unavailable for %s (arity %d)",
				source, source.Arity())
		}
	default:
		return fmt.Errorf("entropy.mode must be raw or von-neumann")
	}
	if cfg.Entropy.TargetBits < 1 {
		return fmt.Errorf("entropy.bits must be >= 1")
	}

	if _, ok := mnemonic.ParseScheme(cfg.Mnemonic.Scheme); !ok {
		return fmt.Errorf("mnemonic.scheme must be bip39 or electrum")
	}
	if _, ok := mnemonic.ParseVersion(cfg.Mnemonic.ElectrumVersion); !ok {
		return fmt.Errorf("mnemonic.version must be legacy or segwit")
	}
	switch cfg.Mnemonic.Words {
	case 12, 15, 18, 21, 24:
	default:
		return fmt.Errorf("mnemonic.words must be 12, 15, 18, 21 or 24")
	}

	if _, err := hdkey.ParsePath(cfg.Derivation.Path); err != nil {
		return fmt.Errorf("derive.path: %w", err)
	}
	if cfg.Derivation.CompressIterations < 1 {
		return fmt.Errorf("derive.compress_iterations must be >= 1")
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}
