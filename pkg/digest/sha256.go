package digest

import "encoding/binary"

// SHA-256 per FIPS 180-4.

var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

type sha256Hasher struct {
	h   [8]uint32
	x   [64]byte
	nx  int
	len uint64
}

func newSHA256() *sha256Hasher {
	h := &sha256Hasher{}
	h.Reset()
	return h
}

func (h *sha256Hasher) Reset() {
	h.h = [8]uint32{
		0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
		0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
	}
	h.x = [64]byte{}
	h.nx = 0
	h.len = 0
}

func (h *sha256Hasher) Size() int            { return 32 }
func (h *sha256Hasher) BlockSize() int       { return 64 }
func (h *sha256Hasher) Algorithm() Algorithm { return SHA256 }

func (h *sha256Hasher) Write(p []byte) (int, error) {
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

func (h *sha256Hasher) Sum() Digest {
	// Finalize a copy so the caller can keep writing.
	d := *h

	// Length-append padding: 0x80, zeros, then the bit length big-endian.
	var pad [72]byte
	pad[0] = 0x80
	padLen := 56 - int(d.len%64)
	if padLen <= 0 {
		padLen += 64
	}
	binary.BigEndian.PutUint64(pad[padLen:], d.len*8)
	d.Write(pad[:padLen+8])

	var sum [32]byte
	for i, v := range d.h {
		binary.BigEndian.PutUint32(sum[i*4:], v)
	}
	d.wipe()
	return newDigest(SHA256, sum[:])
}

func (h *sha256Hasher) wipe() {
	h.h = [8]uint32{}
	h.x = [64]byte{}
	h.nx = 0
	h.len = 0
}

func (h *sha256Hasher) block(p []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(p[i*4:])
	}
	for i := 16; i < 64; i++ {
		v1 := w[i-2]
		t1 := rotr32(v1, 17) ^ rotr32(v1, 19) ^ (v1 >> 10)
		v2 := w[i-15]
		t2 := rotr32(v2, 7) ^ rotr32(v2, 18) ^ (v2 >> 3)
		w[i] = t1 + w[i-7] + t2 + w[i-16]
	}

	a, b, c, d, e, f, g, hh := h.h[0], h.h[1], h.h[2], h.h[3], h.h[4], h.h[5], h.h[6], h.h[7]
	for i := 0; i < 64; i++ {
		t1 := hh + (rotr32(e, 6) ^ rotr32(e, 11) ^ rotr32(e, 25)) + ((e & f) ^ (^e & g)) + sha256K[i] + w[i]
		t2 := (rotr32(a, 2) ^ rotr32(a, 13) ^ rotr32(a, 22)) + ((a & b) ^ (a & c) ^ (b & c))
		hh = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	h.h[0] += a
	h.h[1] += b
	h.h[2] += c
	h.h[3] += d
	h.h[4] += e
	h.h[5] += f
	h.h[6] += g
	h.h[7] += hh
}

func rotr32(x uint32, n uint) uint32 { return x>>n | x<<(32-n) }
