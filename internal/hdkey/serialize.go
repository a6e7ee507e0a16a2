package hdkey

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/keysmith-security/keysmith/pkg/digest"
)

// Serialization version prefixes (mainnet xprv/xpub).
var (
	versionPrivate = [4]byte{0x04, 0x88, 0xAD, 0xE4}
	versionPublic  = [4]byte{0x04, 0x88, 0xB2, 0x1E}
)

const serializedLen = 78

// Serialize renders the key in the 78-byte extended key format:
// version, depth, parent fingerprint, child number, chain code and key
// material.
func (k *ExtendedKey) Serialize() []byte {
	out := make([]byte, 0, serializedLen)
	if k.private {
		out = append(out, versionPrivate[:]...)
	} else {
		out = append(out, versionPublic[:]...)
	}
	out = append(out, k.depth)
	out = append(out, k.parentFP[:]...)
	out = binary.BigEndian.AppendUint32(out, k.childNum)
	out = append(out, k.chainCode...)
	if k.private {
		out = append(out, 0x00)
	}
	out = append(out, k.key...)
	return out
}

// String renders the key as a Base58Check string ("xprv..." or
// "xpub...").
func (k *ExtendedKey) String() string {
	payload := k.Serialize()
	defer zeroBytes(payload)
	return base58check(payload)
}

// ParseExtendedKey decodes a Base58Check extended key string.
func ParseExtendedKey(s string) (*ExtendedKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	if len(raw) != serializedLen+4 {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidKeyEncoding, len(raw), serializedLen+4)
	}

	payload, checksum := raw[:serializedLen], raw[serializedLen:]
	if !bytes.Equal(doubleSHA256(payload)[:4], checksum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidKeyEncoding)
	}

	k := &ExtendedKey{
		depth:     payload[4],
		childNum:  binary.BigEndian.Uint32(payload[9:13]),
		chainCode: append([]byte(nil), payload[13:45]...),
	}
	copy(k.parentFP[:], payload[5:9])

	var version [4]byte
	copy(version[:], payload[:4])
	keyData := payload[45:78]
	switch version {
	case versionPrivate:
		if keyData[0] != 0x00 {
			return nil, fmt.Errorf("%w: private key without leading zero byte", ErrInvalidKeyEncoding)
		}
		k.key = append([]byte(nil), keyData[1:]...)
		k.private = true
	case versionPublic:
		if keyData[0] != 0x02 && keyData[0] != 0x03 {
			return nil, fmt.Errorf("%w: uncompressed public key", ErrInvalidKeyEncoding)
		}
		k.key = append([]byte(nil), keyData...)
	default:
		return nil, fmt.Errorf("%w: unknown version %x", ErrInvalidKeyEncoding, version)
	}

	// Depth zero keys are roots; a root with a parent makes no sense.
	if k.depth == 0 && (k.parentFP != [4]byte{} || k.childNum != 0) {
		return nil, fmt.Errorf("%w: depth zero with parent metadata", ErrInvalidKeyEncoding)
	}
	return k, nil
}

// base58check appends the four-byte double-SHA256 checksum and encodes.
func base58check(payload []byte) string {
	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, payload...)
	buf = append(buf, doubleSHA256(payload)[:4]...)
	defer zeroBytes(buf)
	return base58.Encode(buf)
}

func doubleSHA256(b []byte) []byte {
	first := digest.Sum256(b)
	second := digest.Sum256(first.Bytes())
	return second.Bytes()
}
