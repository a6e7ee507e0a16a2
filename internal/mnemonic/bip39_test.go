package mnemonic

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	bip39ref "github.com/tyler-smith/go-bip39"
)

// Reference vectors from the BIP-39 test suite (passphrase "TREZOR").
var bip39Vectors = []struct {
	entropy  string
	mnemonic string
	seed     string
}{
	{
		"00000000000000000000000000000000",
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		"c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
	},
	{
		"7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f",
		"legal winner thank year wave sausage worth useful legal winner thank yellow",
		"2e8905819b8723fe2c1d161860e5ee1830318dbf49a83bd451cfb8440c28bd6fa457fe1296106559a3c80937a1c1069be3a3a5bd381e6600688cdbd55a7ddd97",
	},
	{
		"80808080808080808080808080808080",
		"letter advice cage absurd amount doctor acute avoid letter advice cage above",
		"d71de856f81a8acc65e6fc851a38d4d7ec216fd0796d0a6827a3ad6ed5511a30fa280f12eb2e47ed2ac03b5c462a0358d18d69fe4f985ec81778c1b370b652a8",
	},
	{
		"ffffffffffffffffffffffffffffffff",
		"zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong",
		"ac27495480225222079d7be181583751e86f571027b0497b5b5d11218e0a8a13332572917f0f8e5a589620c6f15b11c61dee327651a14c34e18231052e48c069",
	},
	{
		"0000000000000000000000000000000000000000000000000000000000000000",
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art",
		"bda85446c68413707090a52022edd26a1c9462295029f2e60cd7c4f2bbd3097170af7a4d73245cafa9c3cca8d561a7c3de6f5d4a10be8ed2a5e608d68f92fcc8",
	},
}

func TestBIP39_Vectors(t *testing.T) {
	c := &BIP39Codec{}
	for _, tt := range bip39Vectors {
		entropy, err := hex.DecodeString(tt.entropy)
		if err != nil {
			t.Fatalf("bad vector entropy: %v", err)
		}

		words, err := c.Encode(entropy)
		if err != nil {
			t.Fatalf("Encode(%s) error: %v", tt.entropy, err)
		}
		if got := strings.Join(words, " "); got != tt.mnemonic {
			t.Errorf("Encode(%s) = %q, want %q", tt.entropy, got, tt.mnemonic)
		}

		decoded, err := c.Decode(words)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if !bytes.Equal(decoded, entropy) {
			t.Errorf("Decode() = %x, want %s", decoded, tt.entropy)
		}

		seed, err := c.Seed(words, "TREZOR")
		if err != nil {
			t.Fatalf("Seed() error: %v", err)
		}
		if got := hex.EncodeToString(seed); got != tt.seed {
			t.Errorf("Seed() = %s, want %s", got, tt.seed)
		}
	}
}

func TestBIP39_RoundTripAllLengths(t *testing.T) {
	c := &BIP39Codec{}
	for _, byteLen := range []int{16, 20, 24, 28, 32} {
		entropy := make([]byte, byteLen)
		for i := range entropy {
			entropy[i] = byte(i*37 + 11)
		}

		words, err := c.Encode(entropy)
		if err != nil {
			t.Fatalf("Encode(%d bytes) error: %v", byteLen, err)
		}
		wantWords := (byteLen*8 + byteLen/4) / 11
		if len(words) != wantWords {
			t.Fatalf("Encode(%d bytes) = %d words, want %d", byteLen, len(words), wantWords)
		}

		decoded, err := c.Decode(words)
		if err != nil {
			t.Fatalf("Decode(%d bytes) error: %v", byteLen, err)
		}
		if !bytes.Equal(decoded, entropy) {
			t.Errorf("round trip at %d bytes: got %x, want %x", byteLen, decoded, entropy)
		}
	}
}

func TestBIP39_MatchesReference(t *testing.T) {
	c := &BIP39Codec{}
	entropy := make([]byte, 32)
	for i := range entropy {
		entropy[i] = byte(255 - i*3)
	}

	words, err := c.Encode(entropy)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	want, err := bip39ref.NewMnemonic(entropy)
	if err != nil {
		t.Fatalf("reference NewMnemonic() error: %v", err)
	}
	if got := strings.Join(words, " "); got != want {
		t.Errorf("Encode() = %q, reference = %q", got, want)
	}

	refEntropy, err := bip39ref.EntropyFromMnemonic(want)
	if err != nil {
		t.Fatalf("reference EntropyFromMnemonic() error: %v", err)
	}
	if !bytes.Equal(refEntropy, entropy) {
		t.Errorf("reference decoded %x, want %x", refEntropy, entropy)
	}

	seed, err := c.Seed(words, "pass")
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	if refSeed := bip39ref.NewSeed(want, "pass"); !bytes.Equal(seed, refSeed) {
		t.Errorf("Seed() = %x, reference = %x", seed, refSeed)
	}
}

func TestBIP39_DecodeErrors(t *testing.T) {
	c := &BIP39Codec{}
	valid := strings.Fields(bip39Vectors[0].mnemonic)

	t.Run("word count", func(t *testing.T) {
		if _, err := c.Decode(valid[:11]); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Decode(11 words) error = %v, want ErrInvalidParameter", err)
		}
	})

	t.Run("unknown word", func(t *testing.T) {
		words := append([]string(nil), valid...)
		words[5] = "keysmith"
		if _, err := c.Decode(words); !errors.Is(err, ErrUnknownWord) {
			t.Errorf("Decode() error = %v, want ErrUnknownWord", err)
		}
	})

	t.Run("checksum", func(t *testing.T) {
		words := append([]string(nil), valid...)
		words[11] = "abandon"
		if _, err := c.Decode(words); !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("Decode() error = %v, want ErrChecksumMismatch", err)
		}
	})

	t.Run("case folded lookup", func(t *testing.T) {
		words := append([]string(nil), valid...)
		words[0] = "Abandon"
		if err := c.Validate(words); err != nil {
			t.Errorf("Validate() with cased word error: %v", err)
		}
	})
}

func TestBIP39_EncodeErrors(t *testing.T) {
	c := &BIP39Codec{}
	for _, byteLen := range []int{0, 12, 17, 36} {
		if _, err := c.Encode(make([]byte, byteLen)); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Encode(%d bytes) error = %v, want ErrInvalidParameter", byteLen, err)
		}
	}
}
