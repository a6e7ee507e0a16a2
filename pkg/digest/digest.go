// Package digest implements the fixed-block hash functions the derivation
// pipeline is built on: RIPEMD-160, SHA-256 and SHA-512. The implementations
// are self-contained and process input incrementally so callers never need
// the whole message in memory.
package digest

import "encoding/hex"

// Algorithm identifies a supported hash function.
type Algorithm uint8

const (
	RIPEMD160 Algorithm = iota
	SHA256
	SHA512
)

// String returns the conventional name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case RIPEMD160:
		return "ripemd160"
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// Size returns the digest length in bytes.
func (a Algorithm) Size() int {
	switch a {
	case RIPEMD160:
		return 20
	case SHA256:
		return 32
	case SHA512:
		return 64
	default:
		return 0
	}
}

// BlockSize returns the internal block length in bytes.
func (a Algorithm) BlockSize() int {
	switch a {
	case SHA512:
		return 128
	case RIPEMD160, SHA256:
		return 64
	default:
		return 0
	}
}

// ParseAlgorithm maps a name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, bool) {
	switch name {
	case "ripemd160", "ripemd-160":
		return RIPEMD160, true
	case "sha256", "sha-256":
		return SHA256, true
	case "sha512", "sha-512":
		return SHA512, true
	default:
		return 0, false
	}
}

// Digest is a fixed-size hash output tagged with the algorithm that
// produced it. It is a value type and never mutated after creation.
type Digest struct {
	alg Algorithm
	sum [64]byte
	n   int
}

// Algorithm returns the algorithm that produced this digest.
func (d Digest) Algorithm() Algorithm { return d.alg }

// Size returns the digest length in bytes.
func (d Digest) Size() int { return d.n }

// Bytes returns a copy of the digest bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, d.n)
	copy(out, d.sum[:d.n])
	return out
}

// Hex returns the digest as a lowercase hex string.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.sum[:d.n])
}

// Equal reports whether two digests have the same algorithm and bytes.
func (d Digest) Equal(other Digest) bool {
	if d.alg != other.alg || d.n != other.n {
		return false
	}
	// Not secret data; plain comparison is fine here.
	return d.sum == other.sum
}

func newDigest(alg Algorithm, sum []byte) Digest {
	d := Digest{alg: alg, n: len(sum)}
	copy(d.sum[:], sum)
	return d
}

// Hasher is the incremental hashing interface shared by all algorithms.
// Write never fails; any byte sequence, including empty, is valid input.
type Hasher interface {
	// Write appends more input. Implements io.Writer; the error is always nil.
	Write(p []byte) (int, error)
	// Sum finalizes a copy of the current state and returns the digest.
	// The hasher may continue to accept writes afterwards.
	Sum() Digest
	// Reset restores the initial state and wipes any buffered input.
	Reset()
	// Size returns the digest length in bytes.
	Size() int
	// BlockSize returns the block length in bytes.
	BlockSize() int
	// Algorithm identifies the underlying hash function.
	Algorithm() Algorithm
}

// New returns a fresh incremental hasher for the algorithm.
// It panics on an unknown algorithm; the set is closed.
func New(a Algorithm) Hasher {
	switch a {
	case RIPEMD160:
		return newRIPEMD160()
	case SHA256:
		return newSHA256()
	case SHA512:
		return newSHA512()
	default:
		panic("digest: unknown algorithm")
	}
}

// Hash computes the digest of data in one shot.
func Hash(a Algorithm, data []byte) Digest {
	h := New(a)
	h.Write(data)
	return h.Sum()
}

// Sum160 computes the RIPEMD-160 digest of data.
func Sum160(data []byte) Digest { return Hash(RIPEMD160, data) }

// Sum256 computes the SHA-256 digest of data.
func Sum256(data []byte) Digest { return Hash(SHA256, data) }

// Sum512 computes the SHA-512 digest of data.
func Sum512(data []byte) Digest { return Hash(SHA512, data) }

// Hash160 computes RIPEMD160(SHA256(data)), the construction extended-key
// fingerprints are built from.
func Hash160(data []byte) Digest {
	inner := Sum256(data)
	return Sum160(inner.Bytes())
}
