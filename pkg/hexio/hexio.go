// Package hexio handles the hexadecimal text framing the command-line
// tools use for keys, IVs, ciphertexts and tags, plus the small file
// helpers around it. File access goes through afero so tests run
// against an in-memory filesystem.
package hexio

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// Decode decodes a hex string, tolerating surrounding whitespace and a
// trailing newline from files or pipes.
func Decode(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("hexio: %w", err)
	}
	return b, nil
}

// DecodeExact decodes a hex string that must represent exactly n bytes.
func DecodeExact(s string, n int) ([]byte, error) {
	b, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, fmt.Errorf("hexio: got %d bytes, want %d", len(b), n)
	}
	return b, nil
}

// Encode returns the lower-case hex encoding of b.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// ReadHex reads a file containing one hex-encoded buffer.
func ReadHex(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("hexio: reading %s: %w", path, err)
	}
	return Decode(string(data))
}

// WriteHex writes data to path as a hex line.
func WriteHex(fs afero.Fs, path string, data []byte) error {
	if err := afero.WriteFile(fs, path, []byte(Encode(data)+"\n"), 0o600); err != nil {
		return fmt.Errorf("hexio: writing %s: %w", path, err)
	}
	return nil
}

// ReadExact reads a raw (binary) file that must hold exactly n bytes,
// such as a 16-byte key file.
func ReadExact(fs afero.Fs, path string, n int) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("hexio: reading %s: %w", path, err)
	}
	if len(data) != n {
		return nil, fmt.Errorf("hexio: %s holds %d bytes, want %d", path, len(data), n)
	}
	return data, nil
}
