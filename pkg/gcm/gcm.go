// Package gcm implements AES-128 in Galois/Counter Mode (NIST SP
// 800-38D): counter-mode encryption plus a GHASH-based authentication
// tag over the ciphertext and any associated data.
//
// All derived material (round keys, hash subkey, counters) lives only
// for the duration of one call. Nonce uniqueness per key is the
// caller's responsibility; reusing one destroys the mode's guarantees.
package gcm

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/devalgupta404/qumail/pkg/aes128"
	"github.com/devalgupta404/qumail/pkg/ghash"
)

const (
	// BlockSize is the underlying cipher block size in bytes.
	BlockSize = aes128.BlockSize

	// TagSize is the length of the authentication tag in bytes.
	TagSize = 16

	// The IV length that takes the direct counter construction; any
	// other non-zero length is run through GHASH instead.
	fastIVSize = 12
)

var (
	// ErrInvalidIV is returned when the IV is empty.
	ErrInvalidIV = errors.New("gcm: IV must not be empty")

	// ErrAuthentication is returned when the tag does not match the
	// received ciphertext and associated data. No plaintext is ever
	// produced alongside this error.
	ErrAuthentication = errors.New("gcm: message authentication failed")
)

// Encrypt encrypts plaintext under the 16-byte key and returns the
// ciphertext (same length as the plaintext) together with the 16-byte
// tag authenticating both the ciphertext and aad. The IV must be
// non-empty and unique per key; 12 bytes is the standard choice.
func Encrypt(key, iv, plaintext, aad []byte) ([]byte, [TagSize]byte, error) {
	var tag [TagSize]byte
	c, h, j0, err := setup(key, iv)
	if err != nil {
		return nil, tag, err
	}

	icb := j0
	inc32(&icb)
	ct := gctr(c, icb, plaintext)

	s := ghash.Hash(&h, aad, ct)
	sealTag(&tag, c, &j0, &s)
	return ct, tag, nil
}

// Decrypt authenticates ciphertext and aad against tag and, only on
// success, returns the decrypted plaintext. On mismatch it returns
// ErrAuthentication and no plaintext is computed at all.
func Decrypt(key, iv, ciphertext, aad []byte, tag [TagSize]byte) ([]byte, error) {
	c, h, j0, err := setup(key, iv)
	if err != nil {
		return nil, err
	}

	s := ghash.Hash(&h, aad, ciphertext)
	var expected [TagSize]byte
	sealTag(&expected, c, &j0, &s)
	if subtle.ConstantTimeCompare(expected[:], tag[:]) != 1 {
		return nil, ErrAuthentication
	}

	icb := j0
	inc32(&icb)
	return gctr(c, icb, ciphertext), nil
}

// setup derives the per-call material: the expanded cipher, the hash
// subkey H = E_k(0^128) and the pre-counter block J0.
func setup(key, iv []byte) (*aes128.Cipher, [BlockSize]byte, [BlockSize]byte, error) {
	var h, j0 [BlockSize]byte
	if len(iv) == 0 {
		return nil, h, j0, ErrInvalidIV
	}
	c, err := aes128.NewCipher(key)
	if err != nil {
		return nil, h, j0, fmt.Errorf("gcm: %w", err)
	}

	c.Encrypt(h[:], h[:])

	if len(iv) == fastIVSize {
		copy(j0[:], iv)
		j0[BlockSize-1] = 1
	} else {
		j0 = ghash.Hash(&h, nil, iv)
	}
	return c, h, j0, nil
}

// sealTag writes E_k(J0) XOR s into tag.
func sealTag(tag *[TagSize]byte, c *aes128.Cipher, j0, s *[BlockSize]byte) {
	c.Encrypt(tag[:], j0[:])
	for i := range tag {
		tag[i] ^= s[i]
	}
}

// inc32 increments the low 32 bits of the counter block big-endian,
// wrapping without touching the upper 96 bits.
func inc32(b *[BlockSize]byte) {
	n := binary.BigEndian.Uint32(b[BlockSize-4:])
	binary.BigEndian.PutUint32(b[BlockSize-4:], n+1)
}

// gctr XORs in with the keystream made by encrypting successive counter
// blocks starting at icb, truncating the final chunk. The output is a
// fresh buffer of the same length as in.
func gctr(c *aes128.Cipher, icb [BlockSize]byte, in []byte) []byte {
	out := make([]byte, len(in))
	var ek [BlockSize]byte
	for off := 0; off < len(in); off += BlockSize {
		c.Encrypt(ek[:], icb[:])
		n := len(in) - off
		if n > BlockSize {
			n = BlockSize
		}
		for i := 0; i < n; i++ {
			out[off+i] = in[off+i] ^ ek[i]
		}
		inc32(&icb)
	}
	return out
}
