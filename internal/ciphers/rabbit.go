package ciphers

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"math/bits"
)

const (
	rabbitKeySize = 16
	rabbitIVSize  = 8

	rabbitBlockSize = 16
)

// rabbitA holds the counter constants from RFC 4503.
var rabbitA = [8]uint32{
	0x4D34D34D, 0xD34D34D3, 0x34D34D34, 0x4D34D34D,
	0xD34D34D3, 0x34D34D34, 0x4D34D34D, 0xD34D34D3,
}

type rabbitState struct {
	x     [8]uint32
	c     [8]uint32
	carry uint32
}

// rabbitStream implements cipher.Stream for Rabbit (RFC 4503).
type rabbitStream struct {
	state rabbitState
	block [rabbitBlockSize]byte
	used  int
}

// newRabbit keys a Rabbit stream. iv may be empty or 8 bytes.
func newRabbit(key, iv []byte) (cipher.Stream, error) {
	if len(key) != rabbitKeySize {
		return nil, fmt.Errorf("rabbit: invalid key size %d", len(key))
	}
	if len(iv) != 0 && len(iv) != rabbitIVSize {
		return nil, fmt.Errorf("rabbit: invalid iv size %d", len(iv))
	}

	r := &rabbitStream{used: rabbitBlockSize}
	r.state.setupKey(key)
	if len(iv) > 0 {
		r.state.setupIV(iv)
	}

	return r, nil
}

func (s *rabbitState) setupKey(key []byte) {
	k0 := binary.LittleEndian.Uint32(key[0:])
	k1 := binary.LittleEndian.Uint32(key[4:])
	k2 := binary.LittleEndian.Uint32(key[8:])
	k3 := binary.LittleEndian.Uint32(key[12:])

	s.x[0] = k0
	s.x[2] = k1
	s.x[4] = k2
	s.x[6] = k3
	s.x[1] = k3<<16 | k2>>16
	s.x[3] = k0<<16 | k3>>16
	s.x[5] = k1<<16 | k0>>16
	s.x[7] = k2<<16 | k1>>16

	s.c[0] = bits.RotateLeft32(k2, 16)
	s.c[2] = bits.RotateLeft32(k3, 16)
	s.c[4] = bits.RotateLeft32(k0, 16)
	s.c[6] = bits.RotateLeft32(k1, 16)
	s.c[1] = k0&0xFFFF0000 | k1&0xFFFF
	s.c[3] = k1&0xFFFF0000 | k2&0xFFFF
	s.c[5] = k2&0xFFFF0000 | k3&0xFFFF
	s.c[7] = k3&0xFFFF0000 | k0&0xFFFF

	s.carry = 0
	for i := 0; i < 4; i++ {
		s.next()
	}

	for i := range s.c {
		s.c[i] ^= s.x[(i+4)&7]
	}
}

func (s *rabbitState) setupIV(iv []byte) {
	i0 := binary.LittleEndian.Uint32(iv[0:])
	i2 := binary.LittleEndian.Uint32(iv[4:])
	i1 := i0>>16 | i2&0xFFFF0000
	i3 := i2<<16 | i0&0x0000FFFF

	s.c[0] ^= i0
	s.c[1] ^= i1
	s.c[2] ^= i2
	s.c[3] ^= i3
	s.c[4] ^= i0
	s.c[5] ^= i1
	s.c[6] ^= i2
	s.c[7] ^= i3

	for i := 0; i < 4; i++ {
		s.next()
	}
}

func (s *rabbitState) next() {
	carry := s.carry
	for i := range s.c {
		sum := uint64(s.c[i]) + uint64(rabbitA[i]) + uint64(carry)
		s.c[i] = uint32(sum)
		carry = uint32(sum >> 32)
	}
	s.carry = carry

	var g [8]uint32
	for i := range g {
		g[i] = rabbitG(s.x[i] + s.c[i])
	}

	s.x[0] = g[0] + bits.RotateLeft32(g[7], 16) + bits.RotateLeft32(g[6], 16)
	s.x[1] = g[1] + bits.RotateLeft32(g[0], 8) + g[7]
	s.x[2] = g[2] + bits.RotateLeft32(g[1], 16) + bits.RotateLeft32(g[0], 16)
	s.x[3] = g[3] + bits.RotateLeft32(g[2], 8) + g[1]
	s.x[4] = g[4] + bits.RotateLeft32(g[3], 16) + bits.RotateLeft32(g[2], 16)
	s.x[5] = g[5] + bits.RotateLeft32(g[4], 8) + g[3]
	s.x[6] = g[6] + bits.RotateLeft32(g[5], 16) + bits.RotateLeft32(g[4], 16)
	s.x[7] = g[7] + bits.RotateLeft32(g[6], 8) + g[5]
}

// rabbitG squares v and folds the high and low words together.
func rabbitG(v uint32) uint32 {
	sq := uint64(v) * uint64(v)
	return uint32(sq) ^ uint32(sq>>32)
}

func (r *rabbitStream) refill() {
	s := &r.state
	s.next()

	binary.LittleEndian.PutUint32(r.block[0:], s.x[0]^s.x[5]>>16^s.x[3]<<16)
	binary.LittleEndian.PutUint32(r.block[4:], s.x[2]^s.x[7]>>16^s.x[5]<<16)
	binary.LittleEndian.PutUint32(r.block[8:], s.x[4]^s.x[1]>>16^s.x[7]<<16)
	binary.LittleEndian.PutUint32(r.block[12:], s.x[6]^s.x[3]>>16^s.x[1]<<16)
	r.used = 0
}

// XORKeyStream implements cipher.Stream.
func (r *rabbitStream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("rabbit: output smaller than input")
	}

	for i, b := range src {
		if r.used == rabbitBlockSize {
			r.refill()
		}
		dst[i] = b ^ r.block[r.used]
		r.used++
	}
}
