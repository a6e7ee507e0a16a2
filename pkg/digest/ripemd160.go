package digest

import "encoding/binary"

// RIPEMD-160 per the Dobbertin/Bosselaers/Preneel specification.
// Unlike the SHA family, message words and output are little-endian.

// Message word selection for the left and right lines.
var rmdNL = [80]uint{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	7, 4, 13, 1, 10, 6, 15, 3, 12, 0, 9, 5, 2, 14, 11, 8,
	3, 10, 14, 4, 9, 15, 8, 1, 2, 7, 0, 6, 13, 11, 5, 12,
	1, 9, 11, 10, 0, 8, 12, 4, 13, 3, 7, 15, 14, 5, 6, 2,
	4, 0, 5, 9, 7, 12, 2, 10, 14, 1, 3, 8, 11, 6, 15, 13,
}

var rmdNR = [80]uint{
	5, 14, 7, 0, 9, 2, 11, 4, 13, 6, 15, 8, 1, 10, 3, 12,
	6, 11, 3, 7, 0, 13, 5, 10, 14, 15, 8, 12, 4, 9, 1, 2,
	15, 5, 1, 3, 7, 14, 6, 9, 11, 8, 12, 2, 10, 0, 4, 13,
	8, 6, 4, 1, 3, 11, 15, 0, 5, 12, 2, 13, 9, 7, 10, 14,
	12, 15, 10, 4, 1, 5, 8, 7, 6, 2, 13, 14, 0, 3, 9, 11,
}

// Rotation amounts for the left and right lines.
var rmdSL = [80]uint{
	11, 14, 15, 12, 5, 8, 7, 9, 11, 13, 14, 15, 6, 7, 9, 8,
	7, 6, 8, 13, 11, 9, 7, 15, 7, 12, 15, 9, 11, 7, 13, 12,
	11, 13, 6, 7, 14, 9, 13, 15, 14, 8, 13, 6, 5, 12, 7, 5,
	11, 12, 14, 15, 14, 15, 9, 8, 9, 14, 5, 6, 8, 6, 5, 12,
	9, 15, 5, 11, 6, 8, 13, 12, 5, 12, 13, 14, 11, 8, 5, 6,
}

var rmdSR = [80]uint{
	8, 9, 9, 11, 13, 15, 15, 5, 7, 7, 8, 11, 14, 14, 12, 6,
	9, 13, 15, 7, 12, 8, 9, 11, 7, 7, 12, 7, 6, 15, 13, 11,
	9, 7, 15, 11, 8, 6, 6, 14, 12, 13, 5, 14, 13, 13, 7, 5,
	15, 5, 8, 11, 14, 14, 6, 14, 6, 9, 12, 9, 12, 5, 15, 8,
	8, 5, 12, 9, 12, 5, 14, 6, 8, 13, 6, 5, 15, 13, 11, 11,
}

type ripemd160Hasher struct {
	h   [5]uint32
	x   [64]byte
	nx  int
	len uint64
}

func newRIPEMD160() *ripemd160Hasher {
	h := &ripemd160Hasher{}
	h.Reset()
	return h
}

func (h *ripemd160Hasher) Reset() {
	h.h = [5]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476, 0xc3d2e1f0}
	h.x = [64]byte{}
	h.nx = 0
	h.len = 0
}

func (h *ripemd160Hasher) Size() int            { return 20 }
func (h *ripemd160Hasher) BlockSize() int       { return 64 }
func (h *ripemd160Hasher) Algorithm() Algorithm { return RIPEMD160 }

func (h *ripemd160Hasher) Write(p []byte) (int, error) {
	n := len(p)
	h.len += uint64(n)
	if h.nx > 0 {
		c := copy(h.x[h.nx:], p)
		h.nx += c
		if h.nx == 64 {
			h.block(h.x[:])
			h.nx = 0
		}
		p = p[c:]
	}
	for len(p) >= 64 {
		h.block(p[:64])
		p = p[64:]
	}
	if len(p) > 0 {
		h.nx = copy(h.x[:], p)
	}
	return n, nil
}

func (h *ripemd160Hasher) Sum() Digest {
	d := *h

	// Same length-append padding as SHA-256, but the bit count is
	// little-endian.
	var pad [72]byte
	pad[0] = 0x80
	padLen := 56 - int(d.len%64)
	if padLen <= 0 {
		padLen += 64
	}
	binary.LittleEndian.PutUint64(pad[padLen:], d.len*8)
	d.Write(pad[:padLen+8])

	var sum [20]byte
	for i, v := range d.h {
		binary.LittleEndian.PutUint32(sum[i*4:], v)
	}
	d.wipe()
	return newDigest(RIPEMD160, sum[:])
}

func (h *ripemd160Hasher) wipe() {
	h.h = [5]uint32{}
	h.x = [64]byte{}
	h.nx = 0
	h.len = 0
}

func (h *ripemd160Hasher) block(p []byte) {
	var x [16]uint32
	for i := 0; i < 16; i++ {
		x[i] = binary.LittleEndian.Uint32(p[i*4:])
	}

	a, b, c, d, e := h.h[0], h.h[1], h.h[2], h.h[3], h.h[4]
	aa, bb, cc, dd, ee := a, b, c, d, e

	// Round 1: left f = x^y^z, right f = x^(y|^z).
	i := 0
	for i < 16 {
		alpha := a + (b ^ c ^ d) + x[rmdNL[i]]
		alpha = rotl32(alpha, rmdSL[i]) + e
		a, b, c, d, e = e, alpha, b, rotl32(c, 10), d

		alpha = aa + (bb ^ (cc | ^dd)) + x[rmdNR[i]] + 0x50a28be6
		alpha = rotl32(alpha, rmdSR[i]) + ee
		aa, bb, cc, dd, ee = ee, alpha, bb, rotl32(cc, 10), dd
		i++
	}

	// Round 2.
	for i < 32 {
		alpha := a + ((b & c) | (^b & d)) + x[rmdNL[i]] + 0x5a827999
		alpha = rotl32(alpha, rmdSL[i]) + e
		a, b, c, d, e = e, alpha, b, rotl32(c, 10), d

		alpha = aa + ((bb & dd) | (cc & ^dd)) + x[rmdNR[i]] + 0x5c4dd124
		alpha = rotl32(alpha, rmdSR[i]) + ee
		aa, bb, cc, dd, ee = ee, alpha, bb, rotl32(cc, 10), dd
		i++
	}

	// Round 3.
	for i < 48 {
		alpha := a + ((b | ^c) ^ d) + x[rmdNL[i]] + 0x6ed9eba1
		alpha = rotl32(alpha, rmdSL[i]) + e
		a, b, c, d, e = e, alpha, b, rotl32(c, 10), d

		alpha = aa + ((bb | ^cc) ^ dd) + x[rmdNR[i]] + 0x6d703ef3
		alpha = rotl32(alpha, rmdSR[i]) + ee
		aa, bb, cc, dd, ee = ee, alpha, bb, rotl32(cc, 10), dd
		i++
	}

	// Round 4.
	for i < 64 {
		alpha := a + ((b & d) | (c & ^d)) + x[rmdNL[i]] + 0x8f1bbcdc
		alpha = rotl32(alpha, rmdSL[i]) + e
		a, b, c, d, e = e, alpha, b, rotl32(c, 10), d

		alpha = aa + ((bb & cc) | (^bb & dd)) + x[rmdNR[i]] + 0x7a6d76e9
		alpha = rotl32(alpha, rmdSR[i]) + ee
		aa, bb, cc, dd, ee = ee, alpha, bb, rotl32(cc, 10), dd
		i++
	}

	// Round 5: left f = x^(y|^z), right f = x^y^z.
	for i < 80 {
		alpha := a + (b ^ (c | ^d)) + x[rmdNL[i]] + 0xa953fd4e
		alpha = rotl32(alpha, rmdSL[i]) + e
		a, b, c, d, e = e, alpha, b, rotl32(c, 10), d

		alpha = aa + (bb ^ cc ^ dd) + x[rmdNR[i]]
		alpha = rotl32(alpha, rmdSR[i]) + ee
		aa, bb, cc, dd, ee = ee, alpha, bb, rotl32(cc, 10), dd
		i++
	}

	t := h.h[1] + c + dd
	h.h[1] = h.h[2] + d + ee
	h.h[2] = h.h[3] + e + aa
	h.h[3] = h.h[4] + a + bb
	h.h[4] = h.h[0] + b + cc
	h.h[0] = t
}

func rotl32(x uint32, n uint) uint32 { return x<<n | x>>(32-n) }
