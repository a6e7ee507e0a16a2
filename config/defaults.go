package config

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Entropy: EntropyConfig{
			Source:     "coinflip",
			Mode:       "von-neumann",
			TargetBits: 128,
		},
		Mnemonic: MnemonicConfig{
			Scheme:          "bip39",
			ElectrumVersion: "segwit",
			Words:           12,
		},
		Derivation: DerivationConfig{
			Path:               "m",
			CompressIterations: 2048,
		},
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}
