// Package aes128 implements the AES-128 block cipher from scratch:
// FIPS-197 key expansion and the round transforms over a column-major
// 4x4 state. It is the single block primitive underneath both the CBC
// and the GCM modes in this repository.
package aes128

import (
	"crypto/cipher"
	"strconv"
)

// The AES block size in bytes.
const BlockSize = 16

// KeySize is the only key size this cipher accepts (AES-128).
const KeySize = 16

const (
	numRounds = 10
	// 11 round keys of 16 bytes each.
	scheduleSize = 16 * (numRounds + 1)
)

type KeySizeError int

func (k KeySizeError) Error() string {
	return "aes128: invalid key size " + strconv.Itoa(int(k))
}

// A Cipher is an instance of AES-128 under a particular key. It holds
// only the expanded round keys and is safe for concurrent use.
type Cipher struct {
	rk [scheduleSize]byte
}

var _ cipher.Block = (*Cipher)(nil)

// NewCipher expands the given 16-byte key and returns a ready cipher.
// Keys of any other length are rejected with a KeySizeError.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, KeySizeError(len(key))
	}
	c := &Cipher{}
	expandKey(key, c.rk[:])
	return c, nil
}

func (c *Cipher) BlockSize() int { return BlockSize }

// Encrypt encrypts the 16-byte block in src and writes the result into
// dst. dst and src may overlap entirely or not at all.
func (c *Cipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("aes128: input not full block")
	}
	if len(dst) < BlockSize {
		panic("aes128: output not full block")
	}
	encryptBlock(c.rk[:], dst, src)
}

// Decrypt decrypts the 16-byte block in src and writes the result into
// dst.
func (c *Cipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("aes128: input not full block")
	}
	if len(dst) < BlockSize {
		panic("aes128: output not full block")
	}
	decryptBlock(c.rk[:], dst, src)
}

// expandKey writes the 176-byte key schedule for key into rk
// (FIPS-197 section 5.2). The first round key is the key itself; every
// fourth word thereafter is rotated, substituted and folded with a
// round constant before the usual XOR with the word four back.
func expandKey(key []byte, rk []byte) {
	copy(rk, key)
	for i := 4; i < scheduleSize/4; i++ {
		var t [4]byte
		copy(t[:], rk[4*(i-1):4*i])
		if i%4 == 0 {
			t[0], t[1], t[2], t[3] = sbox0[t[1]], sbox0[t[2]], sbox0[t[3]], sbox0[t[0]]
			t[0] ^= powx[i/4-1]
		}
		for j := 0; j < 4; j++ {
			rk[4*i+j] = rk[4*(i-4)+j] ^ t[j]
		}
	}
}
