// Package idcodec provides the compact base-63 symbol ID encoding used in
// tool responses and CLI output. The persistence boundary uses the hex form
// (types.SymbolID.String); base-63 exists purely to keep interactive payloads
// short (~11 characters instead of 16 for a 64-bit ID).
//
// Base-63 alphabet: A-Z (0-25), a-z (26-51), 0-9 (52-61), _ (62).
package idcodec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/standardbeagle/lsi/internal/types"
)

const base = 63

var (
	ErrEmptyString = errors.New("idcodec: empty string")
	ErrOverflow    = errors.New("idcodec: value overflows 64 bits")
)

// Encode encodes a uint64 to a base-63 string. Zero encodes as "A" so the
// result is never empty.
func Encode(value uint64) string {
	if value == 0 {
		return "A"
	}

	var buf [11]byte // ceil(64 / log2(63))
	i := len(buf)
	for value > 0 {
		i--
		buf[i] = valueToChar(value % base)
		value /= base
	}
	return string(buf[i:])
}

// Decode decodes a base-63 string produced by Encode.
func Decode(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, ErrEmptyString
	}

	var value uint64
	for _, c := range encoded {
		v, err := charToValue(c)
		if err != nil {
			return 0, err
		}
		next := value*base + v
		if next/base != value {
			return 0, ErrOverflow
		}
		value = next
	}
	return value, nil
}

// IsValid reports whether encoded would decode without error.
func IsValid(encoded string) bool {
	_, err := Decode(encoded)
	return err == nil
}

// EncodeSymbolID encodes a symbol ID to its compact form.
func EncodeSymbolID(id types.SymbolID) string {
	return Encode(binary.BigEndian.Uint64(id[:]))
}

// DecodeSymbolID decodes a compact string back to a symbol ID.
func DecodeSymbolID(encoded string) (types.SymbolID, error) {
	value, err := Decode(encoded)
	if err != nil {
		return types.SymbolID{}, err
	}
	var id types.SymbolID
	binary.BigEndian.PutUint64(id[:], value)
	return id, nil
}

func valueToChar(val uint64) byte {
	switch {
	case val < 26:
		return byte('A' + val)
	case val < 52:
		return byte('a' + (val - 26))
	case val < 62:
		return byte('0' + (val - 52))
	default:
		return '_'
	}
}

func charToValue(c rune) (uint64, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint64(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return uint64(c-'0') + 52, nil
	case c == '_':
		return 62, nil
	default:
		return 0, fmt.Errorf("idcodec: invalid character %q", c)
	}
}
