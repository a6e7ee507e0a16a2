package digest

import (
	"bytes"
	stdsha256 "crypto/sha256"
	stdsha512 "crypto/sha512"
	"strings"
	"testing"
)

func TestSum256_KnownVectors(t *testing.T) {
	// FIPS 180-4 / NIST example vectors.
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{
			"two blocks",
			"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			"248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
		},
		{
			"one million a",
			strings.Repeat("a", 1000000),
			"cdc76e5c9914fb9281a1c7e284d73e67f1809a48a497200e046d39ccc7112cd0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum256([]byte(tt.input))
			if got.Hex() != tt.want {
				t.Errorf("Sum256() = %s, want %s", got.Hex(), tt.want)
			}
		})
	}
}

func TestSum512_KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"empty", "",
			"cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e",
		},
		{
			"abc", "abc",
			"ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		},
		{
			"two blocks",
			"abcdefghbcdefghicdefghijdefghijkefghijklfghijklmghijklmnhijklmnoijklmnopjklmnopqklmnopqrlmnopqrsmnopqrstnopqrstu",
			"8e959b75dae313da8cf4f72814fc143f8f7779c6eb9f7fa17299aeadb6889018501d289e4900f7e4331b99dec4b5433ac7d329eeb6dd26545e96e55b874be909",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum512([]byte(tt.input))
			if got.Hex() != tt.want {
				t.Errorf("Sum512() = %s, want %s", got.Hex(), tt.want)
			}
		})
	}
}

func TestSum160_KnownVectors(t *testing.T) {
	// Vectors from the RIPEMD-160 reference publication.
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "9c1185a5c5e9fc54612808977ee8f548b2258d31"},
		{"a", "a", "0bdc9d2d256b3ee9daae347be6f4dc835a467ffe"},
		{"abc", "abc", "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"},
		{"message digest", "message digest", "5d0689ef49d2fae572b881b123a85ffa21595f36"},
		{"alphabet", "abcdefghijklmnopqrstuvwxyz", "f71c27109c692c1b56bbdceb5b9d2865b3708dbc"},
		{
			"one million a",
			strings.Repeat("a", 1000000),
			"52783243c1697bdbe16d37f97f68f08325dc1528",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum160([]byte(tt.input))
			if got.Hex() != tt.want {
				t.Errorf("Sum160() = %s, want %s", got.Hex(), tt.want)
			}
		})
	}
}

func TestHash_MatchesStdlib(t *testing.T) {
	// Exercise every buffering path: sub-block, exact block, block+1,
	// multi-block, and ragged chunked writes.
	inputs := [][]byte{
		{},
		[]byte("x"),
		bytes.Repeat([]byte{0xAB}, 63),
		bytes.Repeat([]byte{0xCD}, 64),
		bytes.Repeat([]byte{0xEF}, 65),
		bytes.Repeat([]byte{0x01}, 127),
		bytes.Repeat([]byte{0x02}, 128),
		bytes.Repeat([]byte{0x03}, 129),
		bytes.Repeat([]byte{0x5A}, 1000),
	}

	for _, input := range inputs {
		want256 := stdsha256.Sum256(input)
		if got := Sum256(input); !bytes.Equal(got.Bytes(), want256[:]) {
			t.Errorf("Sum256(%d bytes) mismatch with crypto/sha256", len(input))
		}
		want512 := stdsha512.Sum512(input)
		if got := Sum512(input); !bytes.Equal(got.Bytes(), want512[:]) {
			t.Errorf("Sum512(%d bytes) mismatch with crypto/sha512", len(input))
		}
	}
}

func TestHasher_Incremental(t *testing.T) {
	input := []byte("the quick brown fox jumps over the lazy dog, repeatedly, until the message spans several blocks of every supported algorithm")

	for _, alg := range []Algorithm{RIPEMD160, SHA256, SHA512} {
		t.Run(alg.String(), func(t *testing.T) {
			oneShot := Hash(alg, input)

			h := New(alg)
			for i := 0; i < len(input); i += 7 {
				end := i + 7
				if end > len(input) {
					end = len(input)
				}
				h.Write(input[i:end])
			}
			if got := h.Sum(); !got.Equal(oneShot) {
				t.Errorf("chunked %s = %s, want %s", alg, got.Hex(), oneShot.Hex())
			}
		})
	}
}

func TestHasher_SumDoesNotFinalize(t *testing.T) {
	h := New(SHA256)
	h.Write([]byte("hello "))

	first := h.Sum()
	second := h.Sum()
	if !first.Equal(second) {
		t.Error("repeated Sum() without writes should be identical")
	}

	h.Write([]byte("world"))
	full := h.Sum()
	if !full.Equal(Sum256([]byte("hello world"))) {
		t.Error("Sum() should not disturb the running state")
	}
}

func TestHasher_Reset(t *testing.T) {
	h := New(SHA512)
	h.Write([]byte("stale input"))
	h.Reset()
	h.Write([]byte("abc"))

	if got := h.Sum(); !got.Equal(Sum512([]byte("abc"))) {
		t.Error("Reset() should restore the initial state")
	}
}

func TestHash_TrailingZerosDistinct(t *testing.T) {
	// Length-append padding must distinguish trailing zero bytes from
	// an empty message.
	for _, alg := range []Algorithm{RIPEMD160, SHA256, SHA512} {
		empty := Hash(alg, nil)
		zero := Hash(alg, []byte{0x00})
		if empty.Equal(zero) {
			t.Errorf("%s: hash of empty input equals hash of single zero byte", alg)
		}
	}
}

func TestHash160(t *testing.T) {
	// Hash160 of the secp256k1 generator point, a widely published value.
	pubKey := []byte{
		0x02, 0x79, 0xbe, 0x66, 0x7e, 0xf9, 0xdc, 0xbb, 0xac, 0x55, 0xa0,
		0x62, 0x95, 0xce, 0x87, 0x0b, 0x07, 0x02, 0x9b, 0xfc, 0xdb, 0x2d,
		0xce, 0x28, 0xd9, 0x59, 0xf2, 0x81, 0x5b, 0x16, 0xf8, 0x17, 0x98,
	}
	want := "751e76e8199196d454941c45d1b3a323f1433bd6"
	if got := Hash160(pubKey); got.Hex() != want {
		t.Errorf("Hash160() = %s, want %s", got.Hex(), want)
	}
}

func TestAlgorithm_Metadata(t *testing.T) {
	tests := []struct {
		alg       Algorithm
		size      int
		blockSize int
		name      string
	}{
		{RIPEMD160, 20, 64, "ripemd160"},
		{SHA256, 32, 64, "sha256"},
		{SHA512, 64, 128, "sha512"},
	}

	for _, tt := range tests {
		if tt.alg.Size() != tt.size {
			t.Errorf("%s Size() = %d, want %d", tt.name, tt.alg.Size(), tt.size)
		}
		if tt.alg.BlockSize() != tt.blockSize {
			t.Errorf("%s BlockSize() = %d, want %d", tt.name, tt.alg.BlockSize(), tt.blockSize)
		}
		if tt.alg.String() != tt.name {
			t.Errorf("String() = %s, want %s", tt.alg.String(), tt.name)
		}
		parsed, ok := ParseAlgorithm(tt.name)
		if !ok || parsed != tt.alg {
			t.Errorf("ParseAlgorithm(%s) = %v, %v", tt.name, parsed, ok)
		}
	}

	if _, ok := ParseAlgorithm("md5"); ok {
		t.Error("ParseAlgorithm should reject unsupported algorithms")
	}
}
