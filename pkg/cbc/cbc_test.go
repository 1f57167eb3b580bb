package cbc

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devalgupta404/qumail/pkg/aes128"
	"github.com/devalgupta404/qumail/pkg/pkcs7"
)

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// First block of the NIST SP 800-38A CBC-AES128 example; the second
// block covers the full block of padding a 16-byte plaintext gains.
func TestEncryptKnownAnswer(t *testing.T) {
	key := unhex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := unhex(t, "000102030405060708090a0b0c0d0e0f")
	pt := unhex(t, "6bc1bee22e409f96e93d7e117393172a")

	ct, err := Encrypt(key, iv, pt)
	require.NoError(t, err)
	require.Len(t, ct, 2*BlockSize)
	assert.Equal(t, unhex(t, "7649abac8119b246cee98e9b12e9197d"), ct[:16])
	assert.Equal(t, unhex(t, "8964e0b149c10b7b682e6e39aaeb731c"), ct[16:])
}

func TestRoundTrip(t *testing.T) {
	key := unhex(t, "000102030405060708090a0b0c0d0e0f")
	iv := unhex(t, "101112131415161718191a1b1c1d1e1f")

	for n := 0; n <= 3*BlockSize+1; n++ {
		pt := make([]byte, n)
		for i := range pt {
			pt[i] = byte(i * 3)
		}
		ct, err := Encrypt(key, iv, pt)
		require.NoError(t, err, "length %d", n)
		require.Equal(t, 0, len(ct)%BlockSize)
		require.Greater(t, len(ct), n)

		out, err := Decrypt(key, iv, ct)
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, pt, out, "length %d", n)
	}
}

func TestEncryptDeterministic(t *testing.T) {
	key := make([]byte, aes128.KeySize)
	iv := make([]byte, BlockSize)
	pt := []byte("attack at dawn")

	a, err := Encrypt(key, iv, pt)
	require.NoError(t, err)
	b, err := Encrypt(key, iv, pt)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInvalidIV(t *testing.T) {
	key := make([]byte, aes128.KeySize)
	for _, n := range []int{0, 1, 15, 17, 32} {
		_, err := Encrypt(key, make([]byte, n), []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidIV, "encrypt iv length %d", n)
		_, err = Decrypt(key, make([]byte, n), make([]byte, BlockSize))
		assert.ErrorIs(t, err, ErrInvalidIV, "decrypt iv length %d", n)
	}
}

func TestInvalidKey(t *testing.T) {
	iv := make([]byte, BlockSize)
	_, err := Encrypt(make([]byte, 10), iv, []byte("x"))
	var kse aes128.KeySizeError
	require.ErrorAs(t, err, &kse)
	assert.Equal(t, aes128.KeySizeError(10), kse)
}

func TestDecryptRejectsUnalignedCiphertext(t *testing.T) {
	key := make([]byte, aes128.KeySize)
	iv := make([]byte, BlockSize)
	for _, n := range []int{0, 1, 15, 17} {
		_, err := Decrypt(key, iv, make([]byte, n))
		assert.ErrorIs(t, err, ErrInvalidCiphertext, "length %d", n)
	}
}

// Corrupting the last ciphertext block scrambles the padding, which is
// the only integrity signal this mode has.
func TestDecryptSurfacesPaddingError(t *testing.T) {
	key := make([]byte, aes128.KeySize)
	iv := make([]byte, BlockSize)

	ct, err := Encrypt(key, iv, []byte("sixteen byte msg"))
	require.NoError(t, err)

	ct[len(ct)-1] ^= 0xff
	_, err = Decrypt(key, iv, ct)
	assert.ErrorIs(t, err, pkcs7.ErrInvalidPadding)
}

func TestWrongIVChangesOnlyFirstBlock(t *testing.T) {
	key := make([]byte, aes128.KeySize)
	iv := bytes.Repeat([]byte{0x01}, BlockSize)
	pt := bytes.Repeat([]byte{0x55}, 2*BlockSize)

	ct, err := Encrypt(key, iv, pt)
	require.NoError(t, err)

	badIV := bytes.Repeat([]byte{0x02}, BlockSize)
	out, err := Decrypt(key, badIV, ct)
	require.NoError(t, err) // padding lives in the last block and survives
	assert.NotEqual(t, pt[:BlockSize], out[:BlockSize])
	assert.Equal(t, pt[BlockSize:], out[BlockSize:2*BlockSize])
}
