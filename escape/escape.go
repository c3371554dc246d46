// Package escape centralises the per-format text transforms used by the
// codecs, so no decoder or encoder escapes text ad hoc.
//
// For every Syntax, Unescape(Escape(s, x), x) == s holds for any valid UTF-8
// string s. Unescape is more lenient than Escape: it also understands the
// escapes other tools emit (numeric XML references, octal PO escapes,
// \uXXXX sequences and so on).
package escape

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Syntax selects an escaping dialect.
type Syntax int

const (
	// XML escapes & < > " ' as entities (XLIFF, Android, RESX text nodes).
	// Carriage returns become &#xD; so XML line-end normalisation keeps them.
	XML Syntax = iota
	// PO escapes backslash, double quote and control characters inside
	// gettext string literals.
	PO
	// CSV quotes a field unconditionally and doubles embedded quotes.
	CSV
	// YAML produces the body of a double-quoted YAML scalar.
	YAML
	// Android applies the aapt backslash escapes of strings.xml values. XML
	// entity escaping is applied separately by the element writer.
	Android
	// AppleStrings produces the body of a quoted .strings literal.
	AppleStrings
)

func (s Syntax) String() string {
	switch s {
	case XML:
		return "xml"
	case PO:
		return "po"
	case CSV:
		return "csv"
	case YAML:
		return "yaml"
	case Android:
		return "android"
	case AppleStrings:
		return "strings"
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}

// Escape converts text into its escaped form for syntax.
func Escape(text string, syntax Syntax) string {
	switch syntax {
	case XML:
		return xmlEscaper.Replace(text)
	case PO:
		return poEscaper.Replace(text)
	case CSV:
		return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
	case YAML:
		return escapeYAML(text)
	case Android:
		return escapeAndroid(text)
	case AppleStrings:
		return stringsEscaper.Replace(text)
	}
	return text
}

// Unescape reverses Escape for syntax.
func Unescape(text string, syntax Syntax) string {
	switch syntax {
	case XML:
		return unescapeXML(text)
	case PO:
		return unescapeBackslash(text, poEscapes)
	case CSV:
		return unescapeCSV(text)
	case YAML:
		return unescapeBackslash(text, yamlEscapes)
	case Android:
		return unescapeBackslash(text, androidEscapes)
	case AppleStrings:
		return unescapeBackslash(text, stringsEscapes)
	}
	return text
}

// Quote returns the escaped text wrapped in the delimiters of syntax. XML
// and Android have no delimiters and are returned as Escape would.
func Quote(text string, syntax Syntax) string {
	switch syntax {
	case PO, YAML, AppleStrings:
		return `"` + Escape(text, syntax) + `"`
	}
	return Escape(text, syntax)
}

// Unquote strips the delimiters added by Quote and unescapes the body. Input
// without delimiters is unescaped as-is.
func Unquote(text string, syntax Syntax) string {
	switch syntax {
	case PO, YAML, AppleStrings:
		if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
			text = text[1 : len(text)-1]
		}
	}
	return Unescape(text, syntax)
}

// ---------------------------------------------------------------------------
// XML
// ---------------------------------------------------------------------------

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r", "&#xD;",
)

var xmlEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// IsXMLChar reports whether r may appear in an XML 1.0 document, literally
// or as a character reference.
func IsXMLChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func unescapeXML(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			b.WriteByte(s[i])
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		name := s[i+1 : i+end]
		if r, ok := decodeEntity(name); ok {
			b.WriteString(r)
			i += end
			continue
		}
		b.WriteByte('&')
	}
	return b.String()
}

func decodeEntity(name string) (string, bool) {
	if v, ok := xmlEntities[name]; ok {
		return v, true
	}
	if !strings.HasPrefix(name, "#") || len(name) < 2 {
		return "", false
	}
	var (
		n   uint64
		err error
	)
	if name[1] == 'x' || name[1] == 'X' {
		n, err = strconv.ParseUint(name[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(name[1:], 10, 32)
	}
	if err != nil || !utf8.ValidRune(rune(n)) {
		return "", false
	}
	return string(rune(n)), true
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

func unescapeCSV(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

// ---------------------------------------------------------------------------
// Backslash dialects (PO, YAML, Android, Apple .strings)
// ---------------------------------------------------------------------------

var poEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

var stringsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// escapeTable describes the backslash escapes a dialect understands.
type escapeTable struct {
	simple  map[byte]string
	octal   bool // \NNN
	hex     bool // \xHH, a byte unless unicode is set
	unicode bool // \uXXXX and \UXXXXXXXX (or \UXXXX for .strings)
	// shortUpperU reads \U as four hex digits instead of eight.
	shortUpperU bool
}

var poEscapes = escapeTable{
	simple: map[byte]string{
		'n': "\n", 't': "\t", 'r': "\r", '\\': `\`, '"': `"`,
		'a': "\a", 'b': "\b", 'f': "\f", 'v': "\v",
	},
	octal: true,
	hex:   true,
}

var yamlEscapes = escapeTable{
	simple: map[byte]string{
		'0': "\x00", 'a': "\a", 'b': "\b", 't': "\t", '\t': "\t", 'n': "\n",
		'v': "\v", 'f': "\f", 'r': "\r", 'e': "\x1b", ' ': " ", '"': `"`,
		'/': "/", '\\': `\`, 'N': "\u0085", '_': "\u00a0", 'L': "\u2028",
		'P': "\u2029",
	},
	hex:     true,
	unicode: true,
}

var androidEscapes = escapeTable{
	simple: map[byte]string{
		'n': "\n", 't': "\t", '\\': `\`, '\'': "'", '"': `"`, '@': "@", '?': "?",
	},
	unicode: true,
}

var stringsEscapes = escapeTable{
	simple: map[byte]string{
		'n': "\n", 't': "\t", 'r': "\r", '\\': `\`, '"': `"`, '\'': "'", '0': "\x00",
	},
	unicode:     true,
	shortUpperU: true,
}

func unescapeBackslash(s string, table escapeTable) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		if table.octal && next >= '0' && next <= '7' {
			j := i + 1
			for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i+1:j], 8, 8)
			b.WriteByte(byte(n))
			i = j - 1
			continue
		}
		if v, ok := table.simple[next]; ok {
			b.WriteString(v)
			i++
			continue
		}
		width := 0
		switch {
		case table.hex && next == 'x':
			width = 2
		case table.unicode && next == 'u':
			width = 4
		case table.unicode && next == 'U':
			width = 8
			if table.shortUpperU {
				width = 4
			}
		}
		if width > 0 && i+2+width <= len(s) {
			n, err := strconv.ParseUint(s[i+2:i+2+width], 16, 32)
			if err == nil {
				if width == 2 && !table.unicode {
					b.WriteByte(byte(n))
				} else {
					b.WriteRune(rune(n))
				}
				i += 1 + width
				continue
			}
		}
		// Unknown escape: keep it verbatim.
		b.WriteByte(c)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// YAML
// ---------------------------------------------------------------------------

func escapeYAML(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if yamlPrintable(r) {
				b.WriteRune(r)
			} else if r > 0xFFFF {
				fmt.Fprintf(&b, `\U%08X`, r)
			} else {
				fmt.Fprintf(&b, `\u%04X`, r)
			}
		}
	}
	return b.String()
}

// yamlPrintable mirrors the YAML 1.2 printable character set. Line
// separators are excluded because emitters treat them as line breaks.
func yamlPrintable(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x7E:
		return true
	case r == 0x85 || r == 0x2028 || r == 0x2029 || r == 0xFEFF:
		return false
	case r >= 0xA0 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Android
// ---------------------------------------------------------------------------

var androidEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\t", `\t`,
	"'", `\'`,
	`"`, `\"`,
)

func escapeAndroid(s string) string {
	s = androidEscaper.Replace(s)
	if strings.IndexFunc(s, func(r rune) bool { return !IsXMLChar(r) }) >= 0 {
		var b strings.Builder
		b.Grow(len(s) + 8)
		for _, r := range s {
			if IsXMLChar(r) {
				b.WriteRune(r)
			} else {
				fmt.Fprintf(&b, `\u%04X`, r)
			}
		}
		s = b.String()
	}
	// A leading @ or ? would make aapt read the value as a resource or
	// theme attribute reference.
	if strings.HasPrefix(s, "@") || strings.HasPrefix(s, "?") {
		s = `\` + s
	}
	return s
}
