package hashobj

import "encoding/binary"

// sm3Sum implements the SM3 cryptographic hash (GB/T 32905-2016), the one
// digest transform in this package with no available third-party package
// in the dependency graph (see DESIGN.md). Written directly against the
// published compression-function description; everything around it
// (accumulate-then-recompute, copy, digest_size/block_size reporting)
// goes through the same registry/sumFunc contract as every other algorithm.

var sm3IV = [8]uint32{
	0x7380166f, 0x4914b2b9, 0x172442d7, 0xda8a0600,
	0xa96f30bc, 0x163138aa, 0xe38dee4d, 0xb0fb0e4e,
}

func sm3T(j int) uint32 {
	if j < 16 {
		return 0x79cc4519
	}
	return 0x7a879d8a
}

func rotl32(x uint32, n uint) uint32 {
	n &= 31
	return (x << n) | (x >> (32 - n))
}

func sm3P0(x uint32) uint32 { return x ^ rotl32(x, 9) ^ rotl32(x, 17) }
func sm3P1(x uint32) uint32 { return x ^ rotl32(x, 15) ^ rotl32(x, 23) }

func sm3FF(j int, x, y, z uint32) uint32 {
	if j < 16 {
		return x ^ y ^ z
	}
	return (x & y) | (x & z) | (y & z)
}

func sm3GG(j int, x, y, z uint32) uint32 {
	if j < 16 {
		return x ^ y ^ z
	}
	return (x & y) | (^x & z)
}

func sm3Pad(msg []byte) []byte {
	bitLen := uint64(len(msg)) * 8
	padded := append([]byte{}, msg...)
	padded = append(padded, 0x80)
	for len(padded)%64 != 56 {
		padded = append(padded, 0)
	}
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], bitLen)
	return append(padded, lenBuf[:]...)
}

func sm3Compress(v [8]uint32, block []byte) [8]uint32 {
	var w [68]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for j := 16; j < 68; j++ {
		w[j] = sm3P1(w[j-16]^w[j-9]^rotl32(w[j-3], 15)) ^ rotl32(w[j-13], 7) ^ w[j-6]
	}
	var wp [64]uint32
	for j := 0; j < 64; j++ {
		wp[j] = w[j] ^ w[j+4]
	}

	a, b, c, d, e, f, g, h := v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7]
	for j := 0; j < 64; j++ {
		ss1 := rotl32(rotl32(a, 12)+e+rotl32(sm3T(j), uint(j%32)), 7)
		ss2 := ss1 ^ rotl32(a, 12)
		tt1 := sm3FF(j, a, b, c) + d + ss2 + wp[j]
		tt2 := sm3GG(j, e, f, g) + h + ss1 + w[j]
		d = c
		c = rotl32(b, 9)
		b = a
		a = tt1
		h = g
		g = rotl32(f, 19)
		f = e
		e = sm3P0(tt2)
	}

	return [8]uint32{
		v[0] ^ a, v[1] ^ b, v[2] ^ c, v[3] ^ d,
		v[4] ^ e, v[5] ^ f, v[6] ^ g, v[7] ^ h,
	}
}

func sm3Sum(data []byte) []byte {
	padded := sm3Pad(data)
	v := sm3IV
	for off := 0; off < len(padded); off += 64 {
		v = sm3Compress(v, padded[off:off+64])
	}
	out := make([]byte, 32)
	for i, word := range v {
		binary.BigEndian.PutUint32(out[i*4:], word)
	}
	return out
}
