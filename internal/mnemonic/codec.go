// Package mnemonic implements two word-encoding schemes over the BIP-39
// English word list: checksum-suffixed BIP-39 mnemonics and Electrum-style
// seed-version mnemonics. Both map entropy onto 11-bit word indices in
// big-endian order, so a transcript of collected bits reads directly into
// the leading words of the phrase.
package mnemonic

import (
	"errors"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrUnknownWord             = errors.New("word not in word list")
	ErrChecksumMismatch        = errors.New("mnemonic checksum mismatch")
	ErrUnrecognizedSeedVersion = errors.New("unrecognized seed version prefix")
	ErrEntropyExhausted        = errors.New("increment space exhausted")
)

// Scheme selects a mnemonic encoding.
type Scheme uint8

const (
	SchemeBIP39 Scheme = iota
	SchemeElectrum
)

// String returns the scheme's name.
func (s Scheme) String() string {
	if s == SchemeElectrum {
		return "electrum"
	}
	return "bip39"
}

// ParseScheme maps a name to a Scheme.
func ParseScheme(name string) (Scheme, bool) {
	switch name {
	case "bip39":
		return SchemeBIP39, true
	case "electrum":
		return SchemeElectrum, true
	}
	return 0, false
}

// Codec is the capability set shared by both schemes. Encode maps an
// entropy buffer to a phrase, Decode recovers the entropy and validates
// the phrase's integrity mechanism (checksum or seed version), Validate
// checks without recovering, and Seed stretches a phrase into the 64-byte
// derivation seed.
type Codec interface {
	Scheme() Scheme
	Encode(entropy []byte) ([]string, error)
	Decode(words []string) ([]byte, error)
	Validate(words []string) error
	Seed(words []string, passphrase string) ([]byte, error)
}

// NewCodec returns the codec for a scheme.
func NewCodec(s Scheme) (Codec, error) {
	switch s {
	case SchemeBIP39:
		return &BIP39Codec{}, nil
	case SchemeElectrum:
		return &ElectrumCodec{Version: VersionSegwit}, nil
	}
	return nil, ErrInvalidParameter
}

const (
	bitsPerWord = 11
	listSize    = 2048

	seedIterations = 2048
	seedBytes      = 64
)

var (
	wordList  = wordlists.English
	wordIndex map[string]int
)

func init() {
	wordIndex = make(map[string]int, listSize)
	for i, w := range wordList {
		wordIndex[w] = i
	}
}

// lookupWord resolves a case-folded, NFKD-normalized word to its index.
func lookupWord(w string) (int, bool) {
	i, ok := wordIndex[norm.NFKD.String(strings.ToLower(strings.TrimSpace(w)))]
	return i, ok
}

// wordCounts are the supported phrase lengths for both schemes.
var wordCounts = [...]int{12, 15, 18, 21, 24}

func validWordCount(n int) bool {
	for _, c := range wordCounts {
		if c == n {
			return true
		}
	}
	return false
}

// bitAt returns bit i of b, counting from the most significant bit of
// b[0].
func bitAt(b []byte, i int) byte {
	return b[i/8] >> (7 - i%8) & 1
}

// setBit sets bit i of b to v.
func setBit(b []byte, i int, v byte) {
	mask := byte(0x80) >> (i % 8)
	if v != 0 {
		b[i/8] |= mask
	} else {
		b[i/8] &^= mask
	}
}

// joinPhrase renders a word slice as a single-space-separated phrase.
func joinPhrase(words []string) string {
	return strings.Join(words, " ")
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
