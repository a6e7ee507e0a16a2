package mnemonic

import (
	"fmt"
	"strings"

	"github.com/keysmith-security/keysmith/internal/log"
	"github.com/keysmith-security/keysmith/pkg/digest"
	"github.com/keysmith-security/keysmith/pkg/kdf"
	"golang.org/x/text/unicode/norm"
)

// versionHMACKey keys the seed-version HMAC over the normalized phrase.
var versionHMACKey = []byte("Seed version")

// Version identifies an Electrum seed version, determined by the prefix
// of HMAC-SHA512("Seed version", phrase). The 2FA variants are recognized
// when decoding existing phrases but are never generated.
type Version uint8

const (
	VersionLegacy Version = iota
	VersionSegwit
	VersionLegacy2FA
	VersionSegwit2FA
)

var versionNames = [...]string{
	VersionLegacy:    "legacy",
	VersionSegwit:    "segwit",
	VersionLegacy2FA: "legacy-2fa",
	VersionSegwit2FA: "segwit-2fa",
}

// String returns the version's name.
func (v Version) String() string {
	if int(v) >= len(versionNames) {
		return "unknown"
	}
	return versionNames[v]
}

// ParseVersion maps a name to a generatable Version.
func ParseVersion(name string) (Version, bool) {
	switch name {
	case "legacy":
		return VersionLegacy, true
	case "segwit":
		return VersionSegwit, true
	}
	return 0, false
}

// matches reports whether an HMAC prefix identifies this version.
func (v Version) matches(mac []byte) bool {
	switch v {
	case VersionLegacy:
		return mac[0] == 0x01
	case VersionSegwit:
		return mac[0] == 0x10 && mac[1] < 0x10
	case VersionLegacy2FA:
		return mac[0] == 0x10 && mac[1] >= 0x10 && mac[1] < 0x20
	case VersionSegwit2FA:
		return mac[0] == 0x10 && mac[1] >= 0x20 && mac[1] < 0x30
	}
	return false
}

// decodeOrder is the recognition order when parsing.
var decodeOrder = [...]Version{VersionLegacy, VersionSegwit, VersionLegacy2FA, VersionSegwit2FA}

// ElectrumCodec encodes entropy as seed-version phrases: words map 11-bit
// groups big-endian with no checksum suffix, and a phrase is valid when
// its version HMAC carries a recognized prefix. Generation searches by
// incrementing the entropy until a version-valid phrase is found.
//
// Words are treated big-endian throughout, unlike upstream Electrum's
// little-endian word order, so the byte representation of a phrase reads
// in transcript order. The phrase strings themselves remain fully
// interoperable.
type ElectrumCodec struct {
	// Version to generate. Only VersionLegacy and VersionSegwit are
	// accepted by Encode.
	Version Version
}

// Scheme returns SchemeElectrum.
func (c *ElectrumCodec) Scheme() Scheme { return SchemeElectrum }

// Phrase is the result of parsing an Electrum mnemonic.
type Phrase struct {
	Entropy []byte
	Version Version

	// AlsoBIP39 marks a phrase that carries a recognized seed version AND
	// passes BIP-39 checksum validation. Such phrases are never generated
	// here; a wallet cannot tell which scheme the holder meant.
	AlsoBIP39 bool
}

// Encode generates a version-valid phrase from the trailing bits of the
// entropy buffer, incrementing as needed. The increment distance is
// discarded; use Generate to observe it.
func (c *ElectrumCodec) Encode(entropy []byte) ([]string, error) {
	words, _, err := c.Generate(entropy, len(entropy)*8/bitsPerWord)
	return words, err
}

// Generate searches for a version-valid phrase of wordCount words. The
// search starts from the trailing requiredBits of entropy and increments
// the buffer big-endian within the used bit range until the phrase's
// version HMAC matches and the phrase is not also a valid BIP-39
// mnemonic. It returns the phrase and the increment distance from the
// starting entropy.
func (c *ElectrumCodec) Generate(entropy []byte, wordCount int) ([]string, int, error) {
	if c.Version != VersionLegacy && c.Version != VersionSegwit {
		return nil, 0, fmt.Errorf("%w: %s phrases are never generated", ErrInvalidParameter, c.Version)
	}
	if !validWordCount(wordCount) {
		return nil, 0, fmt.Errorf("%w: phrase of %d words, want 12/15/18/21/24",
			ErrInvalidParameter, wordCount)
	}

	requiredBits := wordCount * bitsPerWord
	requiredBytes := (requiredBits + 7) / 8
	if len(entropy) < requiredBytes {
		return nil, 0, fmt.Errorf("%w: %d bytes of entropy for a %d-word phrase, need %d",
			ErrInvalidParameter, len(entropy), wordCount, requiredBytes)
	}

	// Work on the trailing bytes, with the unused leading bits zeroed.
	buf := make([]byte, requiredBytes)
	copy(buf, entropy[len(entropy)-requiredBytes:])
	defer zeroBytes(buf)
	startOffset := requiredBytes*8 - requiredBits
	for i := 0; i < startOffset; i++ {
		setBit(buf, i, 0)
	}

	bip39 := &BIP39Codec{}
	distance := 0
	for {
		words := extractWords(buf, startOffset, wordCount)

		// A phrase that also passes BIP-39 validation is ambiguous and is
		// skipped, as is one whose HMAC does not carry the wanted prefix.
		if bip39.Validate(words) != nil && c.Version.matches(versionHMAC(words)) {
			log.Mnemonic.Debug().
				Str("scheme", "electrum").
				Str("version", c.Version.String()).
				Int("words", wordCount).
				Int("increment_distance", distance).
				Msg("mnemonic generated")
			return words, distance, nil
		}

		if !incrementBits(buf, startOffset, requiredBits) {
			return nil, distance, fmt.Errorf("%w: all %d bits high", ErrEntropyExhausted, requiredBits)
		}
		distance++
	}
}

// Decode recovers the entropy behind a phrase, failing unless the phrase
// carries a recognized seed version.
func (c *ElectrumCodec) Decode(words []string) ([]byte, error) {
	p, err := c.Parse(words)
	if err != nil {
		return nil, err
	}
	return p.Entropy, nil
}

// Validate checks the phrase's words and seed version without keeping
// the entropy.
func (c *ElectrumCodec) Validate(words []string) error {
	p, err := c.Parse(words)
	if err != nil {
		return err
	}
	zeroBytes(p.Entropy)
	return nil
}

// Parse recovers the entropy and identifies the phrase's seed version,
// flagging phrases that are simultaneously valid BIP-39 mnemonics.
func (c *ElectrumCodec) Parse(words []string) (*Phrase, error) {
	if !validWordCount(len(words)) {
		return nil, fmt.Errorf("%w: phrase of %d words, want 12/15/18/21/24",
			ErrInvalidParameter, len(words))
	}

	requiredBits := len(words) * bitsPerWord
	requiredBytes := (requiredBits + 7) / 8
	startOffset := requiredBytes*8 - requiredBits

	buf := make([]byte, requiredBytes)
	for i, w := range words {
		idx, ok := lookupWord(w)
		if !ok {
			zeroBytes(buf)
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownWord, w, i)
		}
		for j := 0; j < bitsPerWord; j++ {
			setBit(buf, startOffset+i*bitsPerWord+j, byte(idx>>(bitsPerWord-1-j)&1))
		}
	}

	mac := versionHMAC(words)
	for _, v := range decodeOrder {
		if v.matches(mac) {
			return &Phrase{
				Entropy:   buf,
				Version:   v,
				AlsoBIP39: (&BIP39Codec{}).Validate(words) == nil,
			}, nil
		}
	}
	zeroBytes(buf)
	return nil, fmt.Errorf("%w: HMAC prefix %02x%02x", ErrUnrecognizedSeedVersion, mac[0], mac[1])
}

// Seed stretches the phrase plus an optional passphrase into the 64-byte
// derivation seed.
func (c *ElectrumCodec) Seed(words []string, passphrase string) ([]byte, error) {
	phrase := normalizeElectrum(joinPhrase(words))
	salt := "electrum" + norm.NFKD.String(passphrase)
	return kdf.PBKDF2(digest.SHA512, []byte(phrase), []byte(salt), seedIterations, seedBytes)
}

// versionHMAC computes HMAC-SHA512("Seed version", normalized phrase).
func versionHMAC(words []string) []byte {
	mac := kdf.HMAC(digest.SHA512, versionHMACKey, []byte(normalizeElectrum(joinPhrase(words))))
	return mac.Bytes()
}

// normalizeElectrum applies the scheme's phrase normalization: NFKD,
// lower-casing, whitespace trimmed and collapsed to single spaces.
func normalizeElectrum(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKD.String(phrase))), " ")
}

// extractWords reads wordCount 11-bit groups starting at startOffset.
func extractWords(buf []byte, startOffset, wordCount int) []string {
	words := make([]string, wordCount)
	for i := range words {
		idx := 0
		for j := 0; j < bitsPerWord; j++ {
			idx = idx<<1 | int(bitAt(buf, startOffset+i*bitsPerWord+j))
		}
		words[i] = wordList[idx]
	}
	return words
}

// incrementBits adds one to the big-endian bit range
// [startOffset, startOffset+width), reporting false on overflow.
func incrementBits(buf []byte, startOffset, width int) bool {
	i := startOffset + width
	for i > startOffset && bitAt(buf, i-1) == 1 {
		setBit(buf, i-1, 0)
		i--
	}
	if i == startOffset {
		return false
	}
	setBit(buf, i-1, 1)
	return true
}
