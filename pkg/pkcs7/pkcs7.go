// Package pkcs7 implements the reversible block padding used by the CBC
// mode: every appended byte carries the pad length, so a block-aligned
// input still grows by one full block.
package pkcs7

import "errors"

// BlockSize is the block length the padding aligns to.
const BlockSize = 16

// ErrInvalidPadding is returned by Unpad when the trailing bytes do not
// form well-formed padding. Note that padding alone is not an integrity
// check; authenticated modes exist for that.
var ErrInvalidPadding = errors.New("pkcs7: invalid padding")

// Pad returns a new buffer containing data followed by 1 to BlockSize
// pad bytes, each equal to the pad count. The input is never mutated.
func Pad(data []byte) []byte {
	n := BlockSize - len(data)%BlockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// Unpad validates the padding of data and returns a copy with the pad
// bytes removed. The last byte names the pad count N; the data must be
// at least N bytes long and end in N copies of N, 1 <= N <= BlockSize.
func Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > BlockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if b != byte(n) {
			return nil, ErrInvalidPadding
		}
	}
	out := make([]byte, len(data)-n)
	copy(out, data)
	return out, nil
}
