package hdkey

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/tyler-smith/go-bip32"

	"github.com/keysmith-security/keysmith/internal/mnemonic"
)

// The two BIP-32 reference trees. Every path is derived both here and in
// the reference implementation and the serialized forms compared, which
// carries the full published vector set.
var bip32Trees = []struct {
	name  string
	seed  func() []byte
	paths []string
}{
	{
		name: "vector 1",
		seed: func() []byte {
			seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
			return seed
		},
		paths: []string{
			"m",
			"m/0'",
			"m/0'/1",
			"m/0'/1/2'",
			"m/0'/1/2'/2",
			"m/0'/1/2'/2/1000000000",
		},
	},
	{
		name: "vector 2",
		seed: func() []byte {
			seed := make([]byte, 64)
			for i := range seed {
				seed[i] = byte(0xff - 3*i)
			}
			return seed
		},
		paths: []string{
			"m",
			"m/0",
			"m/0/2147483647'",
			"m/0/2147483647'/1",
			"m/0/2147483647'/1/2147483646'",
			"m/0/2147483647'/1/2147483646'/2",
		},
	},
}

func referenceDerive(t *testing.T, seed []byte, path string) *bip32.Key {
	t.Helper()
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		t.Fatalf("reference NewMasterKey() error: %v", err)
	}
	indices, err := ParsePath(path)
	if err != nil {
		t.Fatalf("ParsePath(%q) error: %v", path, err)
	}
	for _, idx := range indices {
		key, err = key.NewChildKey(idx)
		if err != nil {
			t.Fatalf("reference NewChildKey(%d) error: %v", idx, err)
		}
	}
	return key
}

func TestDerivation_MatchesReference(t *testing.T) {
	for _, tree := range bip32Trees {
		t.Run(tree.name, func(t *testing.T) {
			master, err := NewMaster(tree.seed())
			if err != nil {
				t.Fatalf("NewMaster() error: %v", err)
			}

			for _, path := range tree.paths {
				key, err := master.DerivePath(path)
				if err != nil {
					t.Fatalf("DerivePath(%q) error: %v", path, err)
				}
				ref := referenceDerive(t, tree.seed(), path)

				if got, want := key.String(), ref.String(); got != want {
					t.Errorf("%s xprv = %s, want %s", path, got, want)
				}
				if got, want := key.Neuter().String(), ref.PublicKey().String(); got != want {
					t.Errorf("%s xpub = %s, want %s", path, got, want)
				}
			}
		})
	}
}

// The all-zero 128-bit pool pins the whole derivation chain to published
// constants: phrase, empty-passphrase seed, master key and the first
// hardened child.
func TestZeroEntropyChain(t *testing.T) {
	codec := &mnemonic.BIP39Codec{}
	words, err := codec.Encode(make([]byte, 16))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	wantPhrase := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	if got := strings.Join(words, " "); got != wantPhrase {
		t.Fatalf("Encode(zero pool) = %q, want %q", got, wantPhrase)
	}

	seed, err := codec.Seed(words, "")
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	wantSeed := "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc1" +
		"9a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"
	if got := hex.EncodeToString(seed); got != wantSeed {
		t.Fatalf("Seed(phrase, \"\") = %s, want %s", got, wantSeed)
	}

	master, err := NewMaster(seed)
	if err != nil {
		t.Fatalf("NewMaster() error: %v", err)
	}
	wantMaster := "xprv9s21ZrQH143K3GJpoapnV8SFfukcVBSfeCficPSGfubmSFDxo1kuHnLisriDvSnRRuL2Qrg5ggqHKNVpxR86QEC8w35uxmGoggxtQTPvfUu"
	if got := master.String(); got != wantMaster {
		t.Errorf("master = %s, want %s", got, wantMaster)
	}

	child, err := master.Child(FirstHardened)
	if err != nil {
		t.Fatalf("Child(0') error: %v", err)
	}
	wantChild := "xprv9ukW2Usuz4v7Yd2EC4vNXaMckdsEdgBA9n7MQbqMJbW9FuHDWWjDwzEM2h6XmFnrzX7JVmfcNWMEVoRauU6hQpbokqPPNTbdycW9fHSPYyF"
	if got := child.String(); got != wantChild {
		t.Errorf("child 0' = %s, want %s", got, wantChild)
	}
}

func TestNewMaster(t *testing.T) {
	seed := bip32Trees[0].seed()
	master, err := NewMaster(seed)
	if err != nil {
		t.Fatalf("NewMaster() error: %v", err)
	}
	if !master.IsPrivate() {
		t.Error("master key is not private")
	}
	if master.Depth() != 0 {
		t.Errorf("master Depth() = %d, want 0", master.Depth())
	}
	// All mainnet master private keys share this serialization prefix.
	if s := master.String(); !strings.HasPrefix(s, "xprv9s21ZrQH143K") {
		t.Errorf("master String() = %s, want xprv9s21ZrQH143K prefix", s)
	}

	for _, n := range []int{0, 15, 65} {
		if _, err := NewMaster(make([]byte, n)); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("NewMaster(%d bytes) error = %v, want ErrInvalidParameter", n, err)
		}
	}
}

// Non-hardened derivation commutes with neutering: deriving a child of
// the neutered parent yields the neutered child.
func TestNeuter_Commutes(t *testing.T) {
	master, err := NewMaster(bip32Trees[0].seed())
	if err != nil {
		t.Fatalf("NewMaster() error: %v", err)
	}

	for _, index := range []uint32{0, 1, 77, FirstHardened - 1} {
		privChild, err := master.Child(index)
		if err != nil {
			t.Fatalf("Child(%d) error: %v", index, err)
		}
		pubChild, err := master.Neuter().Child(index)
		if err != nil {
			t.Fatalf("Neuter().Child(%d) error: %v", index, err)
		}
		if privChild.Neuter().String() != pubChild.String() {
			t.Errorf("neuter does not commute at index %d", index)
		}
		if !bytes.Equal(privChild.PublicKeyBytes(), pubChild.PublicKeyBytes()) {
			t.Errorf("public keys differ at index %d", index)
		}
	}
}

func TestChild_HardenedFromPublic(t *testing.T) {
	master, err := NewMaster(bip32Trees[0].seed())
	if err != nil {
		t.Fatalf("NewMaster() error: %v", err)
	}
	pub := master.Neuter()

	if _, err := pub.Child(FirstHardened); !errors.Is(err, ErrHardenedFromPublic) {
		t.Errorf("Child(hardened) on public key error = %v, want ErrHardenedFromPublic", err)
	}
	if _, err := pub.DerivePath("m/44'/0'/0'"); !errors.Is(err, ErrHardenedFromPublic) {
		t.Errorf("DerivePath(hardened) on public key error = %v, want ErrHardenedFromPublic", err)
	}
	if _, err := pub.Child(0); err != nil {
		t.Errorf("Child(0) on public key error: %v", err)
	}
}

func TestChild_DoesNotMutateParent(t *testing.T) {
	master, err := NewMaster(bip32Trees[0].seed())
	if err != nil {
		t.Fatalf("NewMaster() error: %v", err)
	}
	before := master.String()
	if _, err := master.Derive(FirstHardened+44, 0, 1); err != nil {
		t.Fatalf("Derive() error: %v", err)
	}
	if master.String() != before {
		t.Error("derivation mutated the parent key")
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	master, err := NewMaster(bip32Trees[0].seed())
	if err != nil {
		t.Fatalf("NewMaster() error: %v", err)
	}
	child, err := master.DerivePath("m/44'/0'/1")
	if err != nil {
		t.Fatalf("DerivePath() error: %v", err)
	}

	for _, key := range []*ExtendedKey{master, child, child.Neuter()} {
		s := key.String()
		parsed, err := ParseExtendedKey(s)
		if err != nil {
			t.Fatalf("ParseExtendedKey(%s) error: %v", s, err)
		}
		if parsed.String() != s {
			t.Errorf("round trip = %s, want %s", parsed.String(), s)
		}
		if parsed.IsPrivate() != key.IsPrivate() {
			t.Errorf("round trip privacy = %v, want %v", parsed.IsPrivate(), key.IsPrivate())
		}
		if parsed.Depth() != key.Depth() {
			t.Errorf("round trip depth = %d, want %d", parsed.Depth(), key.Depth())
		}
	}
}

func TestParseExtendedKey_Errors(t *testing.T) {
	master, _ := NewMaster(bip32Trees[0].seed())
	valid := master.String()

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not base58", "xprv0OIl"},
		{"truncated", valid[:len(valid)-10]},
		{"corrupted checksum", valid[:len(valid)-1] + flipBase58Char(valid[len(valid)-1])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseExtendedKey(tt.in); !errors.Is(err, ErrInvalidKeyEncoding) {
				t.Errorf("ParseExtendedKey() error = %v, want ErrInvalidKeyEncoding", err)
			}
		})
	}
}

// flipBase58Char returns a different valid base58 character.
func flipBase58Char(c byte) string {
	if c == 'z' {
		return "x"
	}
	return "z"
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want []uint32
	}{
		{"m", nil},
		{"", nil},
		{"m/0", []uint32{0}},
		{"m/0'", []uint32{FirstHardened}},
		{"m/44'/0'/0/1", []uint32{FirstHardened + 44, FirstHardened, 0, 1}},
		{"m/44h/0H/3", []uint32{FirstHardened + 44, FirstHardened, 3}},
		{"44'/2", []uint32{FirstHardened + 44, 2}},
		{"m/2147483647'", []uint32{FirstHardened + 2147483647}},
		{"m / 44' / 0 / 1", []uint32{FirstHardened + 44, 0, 1}},
		{"  m/0' /1 ", []uint32{FirstHardened, 1}},
		{"m / ", nil},
	}
	for _, tt := range tests {
		got, err := ParsePath(tt.path)
		if err != nil {
			t.Fatalf("ParsePath(%q) error: %v", tt.path, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("ParsePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParsePath(%q)[%d] = %d, want %d", tt.path, i, got[i], tt.want[i])
			}
		}
	}

	for _, path := range []string{"m/x", "m/-1", "m/2147483648", "m/0''", "m//1"} {
		if _, err := ParsePath(path); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("ParsePath(%q) error = %v, want ErrInvalidParameter", path, err)
		}
	}
}

func TestFormatPath(t *testing.T) {
	paths := []string{"m", "m/0", "m/44'/0'/0/1", "m/2147483647'"}
	for _, path := range paths {
		indices, err := ParsePath(path)
		if err != nil {
			t.Fatalf("ParsePath(%q) error: %v", path, err)
		}
		if got := FormatPath(indices); got != path {
			t.Errorf("FormatPath(ParsePath(%q)) = %q", path, got)
		}
	}
}

func TestZero(t *testing.T) {
	master, err := NewMaster(bip32Trees[0].seed())
	if err != nil {
		t.Fatalf("NewMaster() error: %v", err)
	}
	master.Zero()
	if master.IsPrivate() {
		t.Error("key still private after Zero()")
	}
	if master.PrivateKeyBytes() != nil {
		t.Error("private bytes survive Zero()")
	}
}
