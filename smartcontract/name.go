package smartcontract

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// DecodeName converts the fixed size byte string into the text.
// The trailing zero padding is removed.
func DecodeName(raw []byte) (string, error) {
	trimmed := bytes.TrimRight(raw, "\x00")
	if bytes.IndexByte(trimmed, 0) != -1 {
		return "", fmt.Errorf("%w: zero byte inside %x", ErrNameDecode, raw)
	}
	if !utf8.Valid(trimmed) {
		return "", fmt.Errorf("%w: invalid utf-8 %x", ErrNameDecode, raw)
	}

	return string(trimmed), nil
}

// EncodeName converts the text into the right padded bytes32.
// The text longer than 32 bytes is an error.
func EncodeName(name string) ([32]byte, error) {
	var encoded [32]byte
	if len(name) > len(encoded) {
		return encoded, fmt.Errorf("name '%s' is longer than 32 bytes", name)
	}
	copy(encoded[:], name)

	return encoded, nil
}
