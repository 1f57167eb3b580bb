// Package cbc implements AES-128 in cipher block chaining mode with
// PKCS7 padding. Each block is XORed with the previous ciphertext block
// (the IV for the first) before encryption, so encryption is strictly
// sequential. CBC alone does not authenticate; use the gcm package when
// integrity matters.
package cbc

import (
	"errors"
	"fmt"

	"github.com/devalgupta404/qumail/pkg/aes128"
	"github.com/devalgupta404/qumail/pkg/pkcs7"
)

// BlockSize is the cipher block size in bytes.
const BlockSize = aes128.BlockSize

var (
	// ErrInvalidIV is returned when the IV is not exactly one block.
	ErrInvalidIV = errors.New("cbc: IV must be 16 bytes")

	// ErrInvalidCiphertext is returned on decryption of data that is
	// empty or not a multiple of the block size.
	ErrInvalidCiphertext = errors.New("cbc: ciphertext is not a positive multiple of the block size")
)

// Encrypt pads plaintext with PKCS7 and encrypts it under key with the
// given 16-byte IV. The returned ciphertext is freshly allocated and
// one to sixteen bytes longer than the plaintext.
func Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}
	c, err := aes128.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cbc: %w", err)
	}

	ct := pkcs7.Pad(plaintext)
	prev := iv
	var x [BlockSize]byte
	for off := 0; off < len(ct); off += BlockSize {
		for i := 0; i < BlockSize; i++ {
			x[i] = ct[off+i] ^ prev[i]
		}
		c.Encrypt(ct[off:off+BlockSize], x[:])
		prev = ct[off : off+BlockSize]
	}
	return ct, nil
}

// Decrypt reverses Encrypt and strips the padding. A padding error
// means the ciphertext, IV or key was wrong; it is surfaced as
// pkcs7.ErrInvalidPadding.
func Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	c, err := aes128.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cbc: %w", err)
	}

	pt := make([]byte, len(ciphertext))
	prev := iv
	for off := 0; off < len(ciphertext); off += BlockSize {
		c.Decrypt(pt[off:off+BlockSize], ciphertext[off:off+BlockSize])
		for i := 0; i < BlockSize; i++ {
			pt[off+i] ^= prev[i]
		}
		prev = ciphertext[off : off+BlockSize]
	}
	return pkcs7.Unpad(pt)
}
