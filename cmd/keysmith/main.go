// keysmith is an airgapped toolkit for deriving cryptographic keys from
// physically collected entropy: coinflips or dice in, BIP-39 or Electrum
// phrases and BIP-32 extended keys out.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/keysmith-security/keysmith/config"
	"github.com/keysmith-security/keysmith/internal/entropy"
	"github.com/keysmith-security/keysmith/internal/hdkey"
	"github.com/keysmith-security/keysmith/internal/log"
	"github.com/keysmith-security/keysmith/internal/mnemonic"
	"github.com/keysmith-security/keysmith/pkg/digest"
	"github.com/keysmith-security/keysmith/pkg/kdf"
	"github.com/zeebo/blake3"
	"golang.org/x/term"
)

const version = "0.3.0"

func main() {
	fs := flag.NewFlagSet("keysmith", flag.ContinueOnError)
	flags := &config.Flags{}
	config.RegisterFlags(fs, flags)
	fs.Usage = usage

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.Load(fs, flags)
	if err != nil {
		fatal("%v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	args := flags.Args
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]
	log.CLI.Debug().Str("command", cmd).Msg("dispatching")

	switch cmd {
	case "entropy":
		cmdEntropy(cfg, cmdArgs)
	case "mnemonic":
		cmdMnemonic(cfg, cmdArgs)
	case "seed":
		cmdSeed(cfg, cmdArgs)
	case "derive":
		cmdDerive(cfg, cmdArgs)
	case "hash":
		cmdHash(cmdArgs)
	case "hmac":
		cmdHMAC(cmdArgs)
	case "pbkdf2":
		cmdPBKDF2(cmdArgs)
	case "version":
		fmt.Printf("keysmith version %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fatal("Unknown command: %s\nRun 'keysmith help' for usage.", cmd)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: keysmith [global flags] <command> [flags]

Global flags:
  --datadir <path>     Data directory (default: ~/.keysmith)
  --config <path>      Config file path
  --source <s>         Entropy source: coinflip, d4, d6, d8, d10, d12, d16, d20, d100, byte
  --mode <m>           Bias correction: raw or von-neumann
  --bits <n>           Entropy pool size in bits
  --scheme <s>         Mnemonic scheme: bip39 or electrum
  --electrum-version   Electrum seed version to generate: legacy or segwit
  --words <n>          Phrase length: 12, 15, 18, 21, 24
  --path <p>           Derivation path (e.g. m/44'/0'/0'/0/0)
  --log-level <l>      debug, info, warn, error
  --log-json           Output logs as JSON

Commands:
  entropy                         Collect entropy interactively from the
                                  configured source; prints the pool as hex
                                  (--compress <n> stretches it to n bytes)
  mnemonic encode --entropy <hex> Encode entropy as a phrase
  mnemonic decode                 Decode a phrase (read from stdin) back to entropy
  mnemonic validate               Check a phrase's checksum or seed version
  seed                            Stretch a phrase into the 64-byte seed
  derive --seed <hex>             Derive extended keys along --path
  hash --alg <a> [input]          Digest input (sha256, sha512, ripemd160, hash160, blake3)
  hmac --alg <a> --key <hex>      Keyed hash of input
  pbkdf2 --alg <a> --salt <s>     Stretch a secret with PBKDF2
  version                         Show version

Phrases and passphrases are always read from stdin, never from arguments,
so they cannot leak into shell history or the process table.
`)
}

// ── entropy ─────────────────────────────────────────────────────────────

func cmdEntropy(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("entropy", flag.ExitOnError)
	encode := fs.Bool("encode", false, "Encode the pool as a mnemonic phrase when done")
	compress := fs.Int("compress", 0, "Print the pool stretched to N bytes instead of raw")
	fs.Parse(args)

	source, ok := entropy.ParseSource(cfg.Entropy.Source)
	if !ok {
		fatal("unknown entropy source %q", cfg.Entropy.Source)
	}
	mode := entropy.Raw
	if cfg.Entropy.Mode == "von-neumann" {
		mode = entropy.VonNeumann
	}

	session, err := entropy.NewSession(source, mode, cfg.Entropy.TargetBits)
	if err != nil {
		fatal("start session: %v", err)
	}
	defer session.Destroy()

	fmt.Fprintf(os.Stderr, "Collecting %d bits from %s (%s mode).\n",
		session.TargetBits(), source, mode)
	switch source {
	case entropy.Coinflip:
		fmt.Fprintln(os.Stderr, "Enter outcomes as 0/1 or h/t, separated by spaces or newlines.")
	case entropy.Byte:
		fmt.Fprintln(os.Stderr, "Enter outcomes as hex bytes (00-ff), separated by spaces or newlines.")
	default:
		fmt.Fprintf(os.Stderr, "Enter die faces 1-%d, separated by spaces or newlines.\n", source.Arity())
	}

	scanner := bufio.NewScanner(os.Stdin)
	for !session.Finalized() && scanner.Scan() {
		for _, token := range strings.Fields(scanner.Text()) {
			outcome, err := parseOutcome(source, token)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %q: %v\n", token, err)
				continue
			}
			if _, err := session.Add(entropy.Event{Source: source, Outcome: outcome}); err != nil {
				fatal("add outcome: %v", err)
			}
			if session.Finalized() {
				break
			}
		}
		if !session.Finalized() {
			fmt.Fprintf(os.Stderr, "%d/%d bits\n", session.BitLen(), session.TargetBits())
		}
	}
	if err := scanner.Err(); err != nil {
		fatal("read input: %v", err)
	}
	if !session.Finalized() {
		fatal("input ended with %d/%d bits collected", session.BitLen(), session.TargetBits())
	}

	pool, err := session.Bytes()
	if err != nil {
		fatal("%v", err)
	}
	if *compress > 0 {
		stretched, err := session.Compress([]byte("keysmith entropy"), cfg.Derivation.CompressIterations, *compress)
		if err != nil {
			fatal("compress pool: %v", err)
		}
		fmt.Printf("%x\n", stretched)
	} else {
		fmt.Printf("%x\n", pool)
	}

	if *encode {
		words := encodePhrase(cfg, pool)
		fmt.Println(strings.Join(words, " "))
	}
}

// parseOutcome maps operator input to a zero-based outcome. Die faces are
// entered 1-based as printed on the die.
func parseOutcome(source entropy.Source, token string) (int, error) {
	switch source {
	case entropy.Coinflip:
		switch strings.ToLower(token) {
		case "0", "t", "tails":
			return 0, nil
		case "1", "h", "heads":
			return 1, nil
		}
		return 0, fmt.Errorf("want 0/1 or h/t")
	case entropy.Byte:
		b, err := strconv.ParseUint(token, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("want a hex byte")
		}
		return int(b), nil
	default:
		face, err := strconv.Atoi(token)
		if err != nil {
			return 0, fmt.Errorf("want a face 1-%d", source.Arity())
		}
		// Percentile dice show the hundred face as 00.
		if face == 0 && source == entropy.D100 && len(token) == 2 {
			face = 100
		}
		if face < 1 || face > source.Arity() {
			return 0, fmt.Errorf("want a face 1-%d", source.Arity())
		}
		return face - 1, nil
	}
}

// ── mnemonic ────────────────────────────────────────────────────────────

func cmdMnemonic(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: keysmith mnemonic <encode|decode|validate> [flags]")
	}

	switch args[0] {
	case "encode":
		cmdMnemonicEncode(cfg, args[1:])
	case "decode":
		cmdMnemonicDecode(cfg, args[1:])
	case "validate":
		cmdMnemonicValidate(args[1:])
	default:
		fatal("Unknown mnemonic command: %s\nUsage: keysmith mnemonic <encode|decode|validate> [flags]", args[0])
	}
}

func cmdMnemonicEncode(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("mnemonic encode", flag.ExitOnError)
	entropyHex := fs.String("entropy", "", "Entropy as hex")
	fs.Parse(args)

	if *entropyHex == "" {
		fatal("Usage: keysmith mnemonic encode --entropy <hex>")
	}
	pool, err := hex.DecodeString(*entropyHex)
	if err != nil {
		fatal("decode entropy hex: %v", err)
	}

	words := encodePhrase(cfg, pool)
	fmt.Println(strings.Join(words, " "))
}

// encodePhrase encodes a pool under the configured scheme.
func encodePhrase(cfg *config.Config, pool []byte) []string {
	scheme, _ := mnemonic.ParseScheme(cfg.Mnemonic.Scheme)
	switch scheme {
	case mnemonic.SchemeElectrum:
		ver, ok := mnemonic.ParseVersion(cfg.Mnemonic.ElectrumVersion)
		if !ok {
			fatal("unknown electrum version %q", cfg.Mnemonic.ElectrumVersion)
		}
		codec := &mnemonic.ElectrumCodec{Version: ver}
		words, distance, err := codec.Generate(pool, cfg.Mnemonic.Words)
		if err != nil {
			fatal("generate phrase: %v", err)
		}
		if distance > 0 {
			fmt.Fprintf(os.Stderr, "entropy incremented %d time(s) to reach a %s version prefix\n",
				distance, ver)
		}
		return words
	default:
		codec := &mnemonic.BIP39Codec{}
		words, err := codec.Encode(pool)
		if err != nil {
			fatal("encode phrase: %v", err)
		}
		return words
	}
}

func cmdMnemonicDecode(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("mnemonic decode", flag.ExitOnError)
	fs.Parse(args)

	words := readPhrase()
	scheme, _ := mnemonic.ParseScheme(cfg.Mnemonic.Scheme)
	if scheme == mnemonic.SchemeElectrum {
		codec := &mnemonic.ElectrumCodec{}
		p, err := codec.Parse(words)
		if err != nil {
			fatal("decode phrase: %v", err)
		}
		fmt.Printf("%x\n", p.Entropy)
		fmt.Fprintf(os.Stderr, "seed version: %s\n", p.Version)
		if p.AlsoBIP39 {
			fmt.Fprintln(os.Stderr, "warning: phrase is also a valid BIP-39 mnemonic")
		}
		return
	}

	codec := &mnemonic.BIP39Codec{}
	pool, err := codec.Decode(words)
	if err != nil {
		fatal("decode phrase: %v", err)
	}
	fmt.Printf("%x\n", pool)
}

func cmdMnemonicValidate(args []string) {
	fs := flag.NewFlagSet("mnemonic validate", flag.ExitOnError)
	fs.Parse(args)

	words := readPhrase()

	// Report against both schemes; a phrase's scheme is the holder's
	// knowledge, not a property of the words.
	bip39 := &mnemonic.BIP39Codec{}
	if err := bip39.Validate(words); err != nil {
		fmt.Printf("bip39: invalid (%v)\n", err)
	} else {
		fmt.Println("bip39: valid")
	}

	electrum := &mnemonic.ElectrumCodec{}
	p, err := electrum.Parse(words)
	if err != nil {
		fmt.Printf("electrum: invalid (%v)\n", err)
		return
	}
	fmt.Printf("electrum: valid (%s)\n", p.Version)
}

// ── seed ────────────────────────────────────────────────────────────────

func cmdSeed(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.Parse(args)

	words := readPhrase()
	passphrase := readPassphraseConfirmed()

	codec, err := mnemonicCodec(cfg)
	if err != nil {
		fatal("%v", err)
	}
	seed, err := codec.Seed(words, passphrase)
	if err != nil {
		fatal("derive seed: %v", err)
	}
	fmt.Printf("%x\n", seed)
}

// ── derive ──────────────────────────────────────────────────────────────

func cmdDerive(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	seedHex := fs.String("seed", "", "Seed as hex (omit to derive from a phrase on stdin)")
	xpubOnly := fs.Bool("xpub", false, "Print only the extended public key")
	fs.Parse(args)

	var seed []byte
	if *seedHex != "" {
		var err error
		seed, err = hex.DecodeString(*seedHex)
		if err != nil {
			fatal("decode seed hex: %v", err)
		}
	} else {
		words := readPhrase()
		passphrase := readPassphraseConfirmed()
		codec, err := mnemonicCodec(cfg)
		if err != nil {
			fatal("%v", err)
		}
		seed, err = codec.Seed(words, passphrase)
		if err != nil {
			fatal("derive seed: %v", err)
		}
	}

	master, err := hdkey.NewMaster(seed)
	if err != nil {
		fatal("derive master key: %v", err)
	}
	defer master.Zero()

	key, err := master.DerivePath(cfg.Derivation.Path)
	if err != nil {
		fatal("derive %s: %v", cfg.Derivation.Path, err)
	}

	fmt.Fprintf(os.Stderr, "path: %s\n", cfg.Derivation.Path)
	if !*xpubOnly {
		fmt.Printf("xprv: %s\n", key.String())
	}
	fmt.Printf("xpub: %s\n", key.Neuter().String())
	key.Zero()
}

func mnemonicCodec(cfg *config.Config) (mnemonic.Codec, error) {
	scheme, ok := mnemonic.ParseScheme(cfg.Mnemonic.Scheme)
	if !ok {
		return nil, fmt.Errorf("unknown mnemonic scheme %q", cfg.Mnemonic.Scheme)
	}
	return mnemonic.NewCodec(scheme)
}

// ── hash / hmac / pbkdf2 ────────────────────────────────────────────────

func cmdHash(args []string) {
	fs := flag.NewFlagSet("hash", flag.ExitOnError)
	algName := fs.String("alg", "sha256", "Algorithm: sha256, sha512, ripemd160, hash160, blake3")
	hexInput := fs.Bool("hex", false, "Treat input as hex instead of text")
	fs.Parse(args)

	input := readInput(fs.Args(), *hexInput)
	log.Hash.Debug().Str("alg", *algName).Int("input_bytes", len(input)).Msg("hashing")

	switch *algName {
	case "blake3":
		// Operator checksum convenience; not part of the derivation
		// pipeline.
		sum := blake3.Sum256(input)
		fmt.Printf("%x\n", sum)
	case "hash160":
		fmt.Printf("%s\n", digest.Hash160(input).Hex())
	default:
		alg, ok := digest.ParseAlgorithm(*algName)
		if !ok {
			fatal("unknown algorithm %q", *algName)
		}
		fmt.Printf("%s\n", digest.Hash(alg, input).Hex())
	}
}

func cmdHMAC(args []string) {
	fs := flag.NewFlagSet("hmac", flag.ExitOnError)
	algName := fs.String("alg", "sha512", "Algorithm: sha256, sha512, ripemd160")
	keyHex := fs.String("key", "", "Key as hex")
	hexInput := fs.Bool("hex", false, "Treat input as hex instead of text")
	fs.Parse(args)

	if *keyHex == "" {
		fatal("Usage: keysmith hmac --alg <a> --key <hex> [input]")
	}
	key, err := hex.DecodeString(*keyHex)
	if err != nil {
		fatal("decode key hex: %v", err)
	}
	alg, ok := digest.ParseAlgorithm(*algName)
	if !ok {
		fatal("unknown algorithm %q", *algName)
	}

	input := readInput(fs.Args(), *hexInput)
	log.Hash.Debug().Str("alg", *algName).Int("input_bytes", len(input)).Msg("computing hmac")
	fmt.Printf("%s\n", kdf.HMAC(alg, key, input).Hex())
}

func cmdPBKDF2(args []string) {
	fs := flag.NewFlagSet("pbkdf2", flag.ExitOnError)
	algName := fs.String("alg", "sha512", "Algorithm: sha256, sha512, ripemd160")
	salt := fs.String("salt", "", "Salt (text)")
	iterations := fs.Int("iterations", 2048, "Iteration count")
	length := fs.Int("length", 64, "Output length in bytes")
	fs.Parse(args)

	alg, ok := digest.ParseAlgorithm(*algName)
	if !ok {
		fatal("unknown algorithm %q", *algName)
	}

	// The secret never travels through argv.
	password := readSecretLine("Secret: ")

	log.Hash.Debug().Str("alg", *algName).Int("iterations", *iterations).Int("length", *length).Msg("stretching")
	defer log.Benchmark("pbkdf2")()
	out, err := kdf.PBKDF2(alg, password, []byte(*salt), *iterations, *length)
	if err != nil {
		fatal("pbkdf2: %v", err)
	}
	fmt.Printf("%x\n", out)
}

// readInput gathers input from the remaining args or stdin.
func readInput(args []string, isHex bool) []byte {
	var raw []byte
	if len(args) > 0 {
		raw = []byte(strings.Join(args, " "))
	} else {
		data, err := readAllStdin()
		if err != nil {
			fatal("read stdin: %v", err)
		}
		raw = data
	}

	if isHex {
		decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			fatal("decode input hex: %v", err)
		}
		return decoded
	}
	return raw
}

func readAllStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}

// ── phrase and passphrase helpers ───────────────────────────────────────

// readPhrase reads a mnemonic phrase from stdin, hidden when the input is
// a terminal.
func readPhrase() []string {
	return strings.Fields(string(readSecretLine("Phrase: ")))
}

// readSecretLine reads one line of secret input: hidden via the terminal
// when interactive, a plain line when piped.
func readSecretLine(prompt string) []byte {
	if term.IsTerminal(int(syscall.Stdin)) {
		line, err := readPassword(prompt)
		if err != nil {
			fatal("read input: %v", err)
		}
		return line
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			fatal("read stdin: %v", err)
		}
		fatal("no input on stdin")
	}
	return []byte(scanner.Text())
}

// readPassphraseConfirmed prompts for an optional passphrase twice when
// attached to a terminal.
func readPassphraseConfirmed() string {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return ""
	}
	pass, err := readPassword("Passphrase (empty for none): ")
	if err != nil {
		fatal("read passphrase: %v", err)
	}
	if len(pass) == 0 {
		return ""
	}
	confirm, err := readPassword("Confirm passphrase: ")
	if err != nil {
		fatal("read passphrase: %v", err)
	}
	if string(pass) != string(confirm) {
		fatal("passphrases do not match")
	}
	return string(pass)
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
