package kdf

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/keysmith-security/keysmith/pkg/digest"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
)

// PBKDF2 derives keyLen bytes from password and salt per RFC 2898.
// The cost is deliberately linear in iterations; that linearity is the
// security property, so there are no shortcuts. iterations and keyLen
// must both be at least 1.
func PBKDF2(alg digest.Algorithm, password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iteration count %d, must be >= 1", ErrInvalidParameter, iterations)
	}
	if keyLen < 1 {
		return nil, fmt.Errorf("%w: key length %d, must be >= 1", ErrInvalidParameter, keyLen)
	}

	hashLen := alg.Size()
	blocks := (keyLen + hashLen - 1) / hashLen

	mac := NewHMAC(alg, password)
	defer mac.Zero()

	out := make([]byte, 0, blocks*hashLen)
	u := make([]byte, hashLen)
	block := make([]byte, hashLen)
	var idx [4]byte

	for i := 1; i <= blocks; i++ {
		// U1 = HMAC(password, salt || INT(i)).
		binary.BigEndian.PutUint32(idx[:], uint32(i))
		mac.Reset()
		mac.Write(salt)
		mac.Write(idx[:])
		copy(u, mac.Sum().Bytes())
		copy(block, u)

		// Uj = HMAC(password, Uj-1); T = U1 ^ ... ^ Uc.
		for j := 1; j < iterations; j++ {
			mac.Reset()
			mac.Write(u)
			copy(u, mac.Sum().Bytes())
			for k := range block {
				block[k] ^= u[k]
			}
		}
		out = append(out, block...)
	}

	for i := range u {
		u[i] = 0
		block[i] = 0
	}
	return out[:keyLen], nil
}
