package textenc

import (
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func encodeUTF16(t *testing.T, s string, order unicode.Endianness, bom unicode.BOMPolicy) []byte {
	t.Helper()
	out, err := unicode.UTF16(order, bom).NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encoding UTF-16: %v", err)
	}
	return out
}

func TestNormalize(t *testing.T) {
	const text = "\"greeting\" = \"Привет\";\n"
	cases := []struct {
		name string
		in   []byte
	}{
		{"plain utf-8", []byte(text)},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{"utf-16le bom", encodeUTF16(t, text, unicode.LittleEndian, unicode.UseBOM)},
		{"utf-16be bom", encodeUTF16(t, text, unicode.BigEndian, unicode.UseBOM)},
		{"utf-16le no bom", encodeUTF16(t, text, unicode.LittleEndian, unicode.IgnoreBOM)},
		{"utf-16be no bom", encodeUTF16(t, text, unicode.BigEndian, unicode.IgnoreBOM)},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if err != nil {
			t.Fatalf("%s: Normalize error: %v", tc.name, err)
		}
		if string(got) != text {
			t.Errorf("%s: Normalize = %q, want %q", tc.name, got, text)
		}
	}
}

func TestNormalize_ShortInputUnchanged(t *testing.T) {
	for _, in := range [][]byte{nil, []byte("{}"), []byte("a")} {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", in, err)
		}
		if string(got) != string(in) {
			t.Errorf("Normalize(%q) = %q", in, got)
		}
	}
}
