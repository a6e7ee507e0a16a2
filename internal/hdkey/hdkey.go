// Package hdkey implements BIP-32 hierarchical deterministic key
// derivation on secp256k1: master key generation from a seed, hardened
// and normal child derivation for private and public extended keys, and
// the 78-byte serialization format.
package hdkey

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/keysmith-security/keysmith/internal/log"
	"github.com/keysmith-security/keysmith/pkg/digest"
	"github.com/keysmith-security/keysmith/pkg/kdf"
)

var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrInvalidSeed        = errors.New("seed produces an invalid master key")
	ErrInvalidChildIndex  = errors.New("child index produces an invalid key")
	ErrHardenedFromPublic = errors.New("hardened derivation requires a private key")
	ErrInvalidKeyEncoding = errors.New("invalid extended key encoding")
)

// FirstHardened is the first hardened child index.
const FirstHardened uint32 = 0x80000000

// masterHMACKey keys the master-key HMAC over the seed.
var masterHMACKey = []byte("Bitcoin seed")

const (
	minSeedBytes = 16
	maxSeedBytes = 64
)

// ExtendedKey is a BIP-32 extended key: key material plus the chain code
// and positional metadata needed for child derivation. Private keys hold
// a 32-byte scalar; neutered keys hold a 33-byte compressed point.
// Derivation never mutates the receiver.
type ExtendedKey struct {
	key       []byte
	chainCode []byte
	depth     uint8
	parentFP  [4]byte
	childNum  uint32
	private   bool
}

// NewMaster derives the root of a key tree from a seed of 16 to 64
// bytes. The statistically unreachable seeds whose HMAC maps to a zero
// or out-of-range scalar fail with ErrInvalidSeed.
func NewMaster(seed []byte) (*ExtendedKey, error) {
	if len(seed) < minSeedBytes || len(seed) > maxSeedBytes {
		return nil, fmt.Errorf("%w: seed of %d bytes, want %d-%d",
			ErrInvalidParameter, len(seed), minSeedBytes, maxSeedBytes)
	}

	mac := kdf.HMAC(digest.SHA512, masterHMACKey, seed)
	i := mac.Bytes()
	il, ir := i[:32], i[32:]

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(il); overflow || scalar.IsZero() {
		return nil, ErrInvalidSeed
	}
	scalar.Zero()

	k := &ExtendedKey{
		key:       append([]byte(nil), il...),
		chainCode: append([]byte(nil), ir...),
		private:   true,
	}
	zeroBytes(i)

	log.HDKey.Debug().Int("seed_bytes", len(seed)).Msg("master key derived")
	return k, nil
}

// IsPrivate reports whether the key carries private material.
func (k *ExtendedKey) IsPrivate() bool { return k.private }

// Depth returns the derivation depth, 0 for the master key.
func (k *ExtendedKey) Depth() uint8 { return k.depth }

// ChildNum returns the index this key was derived at.
func (k *ExtendedKey) ChildNum() uint32 { return k.childNum }

// ChainCode returns a copy of the chain code.
func (k *ExtendedKey) ChainCode() []byte {
	return append([]byte(nil), k.chainCode...)
}

// PrivateKeyBytes returns a copy of the raw 32-byte private key, or nil
// for a neutered key.
func (k *ExtendedKey) PrivateKeyBytes() []byte {
	if !k.private {
		return nil
	}
	return append([]byte(nil), k.key...)
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *ExtendedKey) PublicKeyBytes() []byte {
	if !k.private {
		return append([]byte(nil), k.key...)
	}
	priv := secp256k1.PrivKeyFromBytes(k.key)
	defer priv.Zero()
	return priv.PubKey().SerializeCompressed()
}

// Fingerprint returns the first four bytes of the HASH160 of the
// compressed public key.
func (k *ExtendedKey) Fingerprint() [4]byte {
	h := digest.Hash160(k.PublicKeyBytes())
	var fp [4]byte
	copy(fp[:], h.Bytes()[:4])
	return fp
}

// Child derives the child key at index. Indices at or above
// FirstHardened are hardened and require a private parent. The
// statistically unreachable indices that map to an invalid scalar or the
// point at infinity fail with ErrInvalidChildIndex; the caller proceeds
// to the next index, they are never skipped silently.
func (k *ExtendedKey) Child(index uint32) (*ExtendedKey, error) {
	hardened := index >= FirstHardened
	if hardened && !k.private {
		return nil, fmt.Errorf("%w: index %d", ErrHardenedFromPublic, index)
	}

	// data = 0x00 || ser256(k) || ser32(i) for hardened children,
	// serP(K) || ser32(i) otherwise.
	data := make([]byte, 0, 37)
	if hardened {
		data = append(data, 0x00)
		data = append(data, k.key...)
	} else {
		data = append(data, k.PublicKeyBytes()...)
	}
	data = append(data, byte(index>>24), byte(index>>16), byte(index>>8), byte(index))

	mac := kdf.HMAC(digest.SHA512, k.chainCode, data)
	zeroBytes(data)
	i := mac.Bytes()
	il, ir := i[:32], i[32:]
	defer zeroBytes(i)

	var ilScalar secp256k1.ModNScalar
	if overflow := ilScalar.SetByteSlice(il); overflow {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidChildIndex, index)
	}
	defer ilScalar.Zero()

	child := &ExtendedKey{
		chainCode: append([]byte(nil), ir...),
		depth:     k.depth + 1,
		parentFP:  k.Fingerprint(),
		childNum:  index,
		private:   k.private,
	}

	if k.private {
		// k_i = (IL + k_par) mod n
		var parent secp256k1.ModNScalar
		parent.SetByteSlice(k.key)
		ilScalar.Add(&parent)
		parent.Zero()
		if ilScalar.IsZero() {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidChildIndex, index)
		}
		sum := ilScalar.Bytes()
		child.key = append([]byte(nil), sum[:]...)
		zeroBytes(sum[:])
		return child, nil
	}

	// K_i = IL*G + K_par
	parentPub, err := secp256k1.ParsePubKey(k.key)
	if err != nil {
		return nil, fmt.Errorf("parse parent public key: %w", err)
	}
	var ilPoint, parentPoint, sum secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&ilScalar, &ilPoint)
	parentPub.AsJacobian(&parentPoint)
	secp256k1.AddNonConst(&ilPoint, &parentPoint, &sum)
	if sum.Z.IsZero() {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidChildIndex, index)
	}
	sum.ToAffine()
	child.key = secp256k1.NewPublicKey(&sum.X, &sum.Y).SerializeCompressed()
	return child, nil
}

// Neuter returns the public extended key: same chain code and position,
// private material replaced by the compressed public key. Neutering a
// public key returns a copy.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	return &ExtendedKey{
		key:       k.PublicKeyBytes(),
		chainCode: append([]byte(nil), k.chainCode...),
		depth:     k.depth,
		parentFP:  k.parentFP,
		childNum:  k.childNum,
		private:   false,
	}
}

// Derive walks a sequence of child indices from this key.
func (k *ExtendedKey) Derive(indices ...uint32) (*ExtendedKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
		current = child
	}
	return current, nil
}

// DerivePath derives along a textual path such as "m/44'/0'/0/1".
func (k *ExtendedKey) DerivePath(path string) (*ExtendedKey, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return k.Derive(indices...)
}

// Zero wipes the key material and chain code.
func (k *ExtendedKey) Zero() {
	zeroBytes(k.key)
	zeroBytes(k.chainCode)
	k.key = nil
	k.chainCode = nil
	k.private = false
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
