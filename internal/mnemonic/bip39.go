package mnemonic

import (
	"fmt"

	"github.com/keysmith-security/keysmith/internal/log"
	"github.com/keysmith-security/keysmith/pkg/digest"
	"github.com/keysmith-security/keysmith/pkg/kdf"
	"golang.org/x/text/unicode/norm"
)

// BIP39Codec encodes entropy as checksum-suffixed phrases: the top
// entropyBits/32 bits of SHA-256(entropy) are appended, and the combined
// bit string is split into 11-bit word indices.
type BIP39Codec struct{}

// Scheme returns SchemeBIP39.
func (c *BIP39Codec) Scheme() Scheme { return SchemeBIP39 }

// Encode maps entropy of 128, 160, 192, 224 or 256 bits to its phrase.
func (c *BIP39Codec) Encode(entropy []byte) ([]string, error) {
	entropyBits := len(entropy) * 8
	if entropyBits < 128 || entropyBits > 256 || entropyBits%32 != 0 {
		return nil, fmt.Errorf("%w: entropy of %d bits, want 128-256 in 32-bit steps",
			ErrInvalidParameter, entropyBits)
	}

	checksumBits := entropyBits / 32
	wordCount := (entropyBits + checksumBits) / bitsPerWord
	hash := digest.Sum256(entropy)
	hashBytes := hash.Bytes()

	words := make([]string, wordCount)
	for i := range words {
		idx := 0
		for j := 0; j < bitsPerWord; j++ {
			bit := i*bitsPerWord + j
			var v byte
			if bit < entropyBits {
				v = bitAt(entropy, bit)
			} else {
				v = bitAt(hashBytes, bit-entropyBits)
			}
			idx = idx<<1 | int(v)
		}
		words[i] = wordList[idx]
	}

	log.Mnemonic.Debug().
		Str("scheme", "bip39").
		Int("entropy_bits", entropyBits).
		Int("words", wordCount).
		Msg("mnemonic encoded")
	return words, nil
}

// Decode recovers the entropy behind a phrase and validates its checksum.
func (c *BIP39Codec) Decode(words []string) ([]byte, error) {
	entropy, _, err := c.decode(words)
	return entropy, err
}

// Validate checks the phrase's words and checksum without keeping the
// entropy.
func (c *BIP39Codec) Validate(words []string) error {
	entropy, _, err := c.decode(words)
	if entropy != nil {
		zeroBytes(entropy)
	}
	return err
}

// decode returns the entropy and the checksum byte actually carried by
// the phrase.
func (c *BIP39Codec) decode(words []string) ([]byte, byte, error) {
	if !validWordCount(len(words)) {
		return nil, 0, fmt.Errorf("%w: phrase of %d words, want 12/15/18/21/24",
			ErrInvalidParameter, len(words))
	}

	totalBits := len(words) * bitsPerWord
	entropyBits := totalBits / 33 * 32
	checksumBits := totalBits - entropyBits

	entropy := make([]byte, entropyBits/8)
	var checksum byte
	for i, w := range words {
		idx, ok := lookupWord(w)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q at position %d", ErrUnknownWord, w, i)
		}
		for j := 0; j < bitsPerWord; j++ {
			bit := i*bitsPerWord + j
			v := byte(idx >> (bitsPerWord - 1 - j) & 1)
			if bit < entropyBits {
				setBit(entropy, bit, v)
			} else {
				checksum = checksum<<1 | v
			}
		}
	}

	hash := digest.Sum256(entropy)
	expected := hash.Bytes()[0] >> (8 - checksumBits)
	if checksum != expected {
		zeroBytes(entropy)
		return nil, 0, fmt.Errorf("%w: got %#02x, computed %#02x",
			ErrChecksumMismatch, checksum, expected)
	}
	return entropy, checksum, nil
}

// Seed stretches the phrase plus an optional passphrase into the 64-byte
// derivation seed. The phrase itself is not validated here; any word
// sequence has a well-defined seed.
func (c *BIP39Codec) Seed(words []string, passphrase string) ([]byte, error) {
	phrase := norm.NFKD.String(joinPhrase(words))
	salt := "mnemonic" + norm.NFKD.String(passphrase)
	return kdf.PBKDF2(digest.SHA512, []byte(phrase), []byte(salt), seedIterations, seedBytes)
}
