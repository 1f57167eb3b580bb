package otp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	pt := []byte("wish you were here")
	key := bytes.Repeat([]byte{0x5a, 0xc3}, len(pt)) // longer than pt

	ct, err := Encrypt(pt, key)
	require.NoError(t, err)
	assert.NotEqual(t, pt, ct)

	out, err := Decrypt(ct, key)
	require.NoError(t, err)
	assert.Equal(t, pt, out)
}

func TestZeroKeyIsIdentity(t *testing.T) {
	pt := []byte{1, 2, 3, 4}
	ct, err := Encrypt(pt, make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, pt, ct)
}

func TestShortKeyRejected(t *testing.T) {
	_, err := Encrypt([]byte("four"), []byte("id"))
	assert.ErrorIs(t, err, ErrShortKey)
	_, err = Decrypt([]byte("four"), []byte("id"))
	assert.ErrorIs(t, err, ErrShortKey)
}

func TestEmptyData(t *testing.T) {
	out, err := Encrypt(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInputNotMutated(t *testing.T) {
	pt := []byte{0xde, 0xad}
	key := []byte{0xff, 0xff}
	saved := append([]byte(nil), pt...)
	_, err := Encrypt(pt, key)
	require.NoError(t, err)
	assert.Equal(t, saved, pt)
}
