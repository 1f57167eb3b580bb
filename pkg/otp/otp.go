// Package otp implements the byte-XOR one-time pad used by the
// key-manager-backed level of the client. The pad must be at least as
// long as the message and, to keep the perfect-secrecy property, must
// never be reused.
package otp

import "errors"

// ErrShortKey is returned when the pad is shorter than the data.
var ErrShortKey = errors.New("otp: key shorter than data")

// Encrypt XORs plaintext with the pad and returns a fresh buffer.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	return xorPad(plaintext, key)
}

// Decrypt is the same XOR; the pad cancels itself out.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	return xorPad(ciphertext, key)
}

func xorPad(data, key []byte) ([]byte, error) {
	if len(key) < len(data) {
		return nil, ErrShortKey
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i]
	}
	return out, nil
}
