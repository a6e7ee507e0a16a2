package entropy

// Pool is an ordered, append-only sequence of bits. Bits are packed
// MSB-first so a transcript of coinflips reads left to right in the byte
// representation.
type Pool struct {
	buf  []byte
	bits int
}

// NewPool allocates a pool with capacity for the given number of bits.
func NewPool(capacityBits int) *Pool {
	return &Pool{buf: make([]byte, 0, (capacityBits+7)/8)}
}

// AppendBit appends a single bit.
func (p *Pool) AppendBit(bit byte) {
	if p.bits%8 == 0 {
		p.buf = append(p.buf, 0)
	}
	if bit != 0 {
		p.buf[p.bits/8] |= 0x80 >> (p.bits % 8)
	}
	p.bits++
}

// AppendBits appends the low width bits of v, most significant first.
func (p *Pool) AppendBits(v uint, width int) {
	for i := width - 1; i >= 0; i-- {
		p.AppendBit(byte(v >> i & 1))
	}
}

// Len returns the number of bits appended so far.
func (p *Pool) Len() int { return p.bits }

// Truncate discards bits beyond n. It is a no-op if the pool is shorter.
func (p *Pool) Truncate(n int) {
	if n >= p.bits {
		return
	}
	p.bits = n
	p.buf = p.buf[:(n+7)/8]
	// Clear the dangling bits of the final partial byte.
	if rem := n % 8; rem != 0 {
		p.buf[len(p.buf)-1] &= byte(0xFF << (8 - rem))
	}
}

// Bytes returns a copy of the pool, zero-padded to a whole byte. The
// consuming codec defines the meaning of any trailing padding bits.
func (p *Pool) Bytes() []byte {
	out := make([]byte, len(p.buf))
	copy(out, p.buf)
	return out
}

// Zero wipes the pool's contents and resets it to empty.
func (p *Pool) Zero() {
	for i := range p.buf {
		p.buf[i] = 0
	}
	p.buf = p.buf[:0]
	p.bits = 0
}
