// Package kdf provides the keyed constructions of the derivation pipeline:
// HMAC (RFC 2104) and PBKDF2 (RFC 2898), built exclusively on pkg/digest.
package kdf

import (
	"github.com/keysmith-security/keysmith/pkg/digest"
)

// HMAC computes the keyed hash of message under key in one shot.
// There is no length restriction on either key or message.
func HMAC(alg digest.Algorithm, key, message []byte) digest.Digest {
	m := NewHMAC(alg, key)
	m.Write(message)
	sum := m.Sum()
	m.Zero()
	return sum
}

// MAC is an incremental HMAC computation. The zero value is not usable;
// construct with NewHMAC.
type MAC struct {
	alg   digest.Algorithm
	inner digest.Hasher
	ipad  []byte
	opad  []byte
}

// NewHMAC builds an incremental HMAC with the given key. Keys longer than
// the algorithm's block size are pre-hashed per RFC 2104.
func NewHMAC(alg digest.Algorithm, key []byte) *MAC {
	blockSize := alg.BlockSize()
	padded := make([]byte, blockSize)
	if len(key) > blockSize {
		keyHash := digest.Hash(alg, key)
		copy(padded, keyHash.Bytes())
	} else {
		copy(padded, key)
	}

	m := &MAC{
		alg:   alg,
		inner: digest.New(alg),
		ipad:  make([]byte, blockSize),
		opad:  make([]byte, blockSize),
	}
	for i, b := range padded {
		m.ipad[i] = b ^ 0x36
		m.opad[i] = b ^ 0x5c
		padded[i] = 0
	}
	m.inner.Write(m.ipad)
	return m
}

// Write appends message bytes.
func (m *MAC) Write(p []byte) (int, error) {
	return m.inner.Write(p)
}

// Sum finalizes a copy of the current state and returns the MAC.
// More message bytes may be written afterwards.
func (m *MAC) Sum() digest.Digest {
	innerSum := m.inner.Sum()
	outer := digest.New(m.alg)
	outer.Write(m.opad)
	inner := innerSum.Bytes()
	outer.Write(inner)
	sum := outer.Sum()
	for i := range inner {
		inner[i] = 0
	}
	outer.Reset()
	return sum
}

// Reset restores the MAC to its post-key state, ready for a new message.
func (m *MAC) Reset() {
	m.inner.Reset()
	m.inner.Write(m.ipad)
}

// Size returns the MAC length in bytes.
func (m *MAC) Size() int { return m.alg.Size() }

// Zero wipes the derived key pads. The MAC is unusable afterwards.
func (m *MAC) Zero() {
	for i := range m.ipad {
		m.ipad[i] = 0
		m.opad[i] = 0
	}
	m.inner.Reset()
}
