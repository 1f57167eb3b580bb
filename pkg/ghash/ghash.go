// Package ghash implements the GHASH universal hash over GF(2^128) used
// by GCM for authentication (NIST SP 800-38D section 6.4). The field
// uses the reduction constant R = 0xe1 followed by 120 zero bits and a
// bit-reflected representation: the multiplicative identity is the
// block 0x80 00...00.
//
// This field is deliberately separate from the GF(2^8) arithmetic
// inside the block cipher; the two use different reduction polynomials
// and must never share code.
package ghash

import "encoding/binary"

// BlockSize is the hash block size in bytes.
const BlockSize = 16

// The top byte of the reduction constant R.
const reduction = 0xe1

// Mul sets x = x·h in GF(2^128), walking the bits of x MSB-first per
// byte and conditionally folding a running copy of h that is shifted
// right one bit at a time.
func Mul(x, h *[BlockSize]byte) {
	var z [BlockSize]byte
	v := *h

	for i := 0; i < BlockSize; i++ {
		xi := x[i]
		for bit := 7; bit >= 0; bit-- {
			if (xi>>uint(bit))&1 == 1 {
				for j := range z {
					z[j] ^= v[j]
				}
			}
			lsb := v[BlockSize-1] & 1
			for j := BlockSize - 1; j > 0; j-- {
				v[j] = v[j]>>1 | v[j-1]<<7
			}
			v[0] >>= 1
			if lsb == 1 {
				v[0] ^= reduction
			}
		}
	}
	*x = z
}

// Hash computes GHASH_h(aad, data): both inputs absorbed in 16-byte
// blocks (the final partial block zero-extended), followed by a length
// block holding the two bit-lengths as 64-bit big-endian integers.
func Hash(h *[BlockSize]byte, aad, data []byte) [BlockSize]byte {
	var y [BlockSize]byte
	absorb(&y, h, aad)
	absorb(&y, h, data)

	var lengths [BlockSize]byte
	binary.BigEndian.PutUint64(lengths[0:8], uint64(len(aad))*8)
	binary.BigEndian.PutUint64(lengths[8:16], uint64(len(data))*8)
	for i := range y {
		y[i] ^= lengths[i]
	}
	Mul(&y, h)
	return y
}

func absorb(y, h *[BlockSize]byte, data []byte) {
	for off := 0; off < len(data); off += BlockSize {
		end := off + BlockSize
		if end > len(data) {
			end = len(data)
		}
		for i, b := range data[off:end] {
			y[i] ^= b
		}
		Mul(y, h)
	}
}
