// Package textenc normalises raw translation files to UTF-8 before they
// reach a decoder.
//
// Xcode still writes .strings files as UTF-16, and Windows tools like to
// prefix UTF-8 files with a byte-order mark. Every codec expects plain UTF-8,
// so the registry runs input through Normalize first.
package textenc

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Normalize returns data as UTF-8 without a byte-order mark. UTF-16 input is
// recognised by its BOM, or by the NUL-byte pattern of a BOM-less file that
// starts with ASCII text. Other input is returned unchanged.
func Normalize(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.LittleEndian)
	case looksUTF16(data, unicode.LittleEndian):
		return decodeUTF16(data, unicode.LittleEndian)
	case looksUTF16(data, unicode.BigEndian):
		return decodeUTF16(data, unicode.BigEndian)
	}
	return data, nil
}

// decodeUTF16 transcodes data; a BOM, when present, overrides the fallback
// byte order and is stripped.
func decodeUTF16(data []byte, fallback unicode.Endianness) ([]byte, error) {
	dec := unicode.UTF16(fallback, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(unicode.BOMOverride(dec), data)
	if err != nil {
		return nil, fmt.Errorf("decoding UTF-16: %w", err)
	}
	return out, nil
}

// looksUTF16 reports whether data starts with at least two ASCII characters
// encoded as UTF-16 in the given byte order.
func looksUTF16(data []byte, order unicode.Endianness) bool {
	if len(data) < 4 || len(data)%2 != 0 {
		return false
	}
	for i := 0; i < 4; i += 2 {
		lo, hi := data[i], data[i+1]
		if order == unicode.BigEndian {
			lo, hi = hi, lo
		}
		if hi != 0 || lo == 0 || lo >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IsUTF8 reports whether data is valid UTF-8.
func IsUTF8(data []byte) bool {
	return utf8.Valid(data)
}
