// Package applestrings implements reading and writing of Apple localization
// files: Localizable.strings and Localizable.stringsdict.
//
// A .strings file is a list of "key" = "value"; pairs with C-style
// comments. The comment right before an entry is its description:
//
//	/* Title of the main window */
//	"title" = "My App";
//
// These files carry no namespace, so units with one are written with a
// "namespace::key" key and split back on decode.
package applestrings

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/minios-linux/transkit/escape"
	"github.com/minios-linux/transkit/model"
)

// ---------------------------------------------------------------------------
// Scanner
// ---------------------------------------------------------------------------

// scanner walks .strings source keeping track of the current line.
type scanner struct {
	src  string
	pos  int
	line int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) next() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

// skipSpace skips whitespace and comments, returning the text of the last
// comment seen. A comment that is never closed is an error.
func (s *scanner) skipSpace() (comment string, err error) {
	for !s.eof() {
		switch {
		case isSpace(s.peek()):
			s.next()
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			start := s.line
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return "", model.ParseErrorAt(model.FormatStrings, start, errors.New("unterminated comment"))
			}
			comment = cleanComment(s.src[s.pos+2 : s.pos+2+end])
			s.advance(end + 4)
		case strings.HasPrefix(s.src[s.pos:], "//"):
			end := strings.IndexByte(s.src[s.pos:], '\n')
			if end < 0 {
				end = len(s.src) - s.pos
			}
			comment = strings.TrimSpace(s.src[s.pos+2 : s.pos+end])
			s.advance(end)
		default:
			return comment, nil
		}
	}
	return comment, nil
}

func (s *scanner) advance(n int) {
	for i := 0; i < n && !s.eof(); i++ {
		s.next()
	}
}

// token reads a quoted string or an unquoted identifier. ok is false when
// neither starts at the current position.
func (s *scanner) token() (tok string, ok bool, err error) {
	if s.peek() == '"' {
		start := s.line
		s.next()
		begin := s.pos
		for !s.eof() {
			c := s.next()
			if c == '\\' && !s.eof() {
				s.next()
				continue
			}
			if c == '"' {
				return escape.Unescape(s.src[begin:s.pos-1], escape.AppleStrings), true, nil
			}
		}
		return "", false, model.ParseErrorAt(model.FormatStrings, start, errors.New("unterminated string"))
	}
	begin := s.pos
	for !s.eof() && isIdent(s.peek()) {
		s.next()
	}
	if s.pos == begin {
		return "", false, nil
	}
	return s.src[begin:s.pos], true, nil
}

// resync skips the rest of a malformed entry: up to and including the next
// ';' on the current line, or to the end of the line.
func (s *scanner) resync() {
	for !s.eof() {
		c := s.next()
		if c == ';' || c == '\n' {
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdent(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '$' || c == '-' || c == ':' || c == '/'
}

// cleanComment trims a block comment and the leading asterisks of its lines.
func cleanComment(c string) string {
	lines := strings.Split(strings.TrimSpace(c), "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if i > 0 {
			l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses a .strings file. Malformed entries are skipped and reported
// as warnings; an unterminated comment or string is a parse error.
func Decode(data []byte) (*model.Document, error) {
	s := &scanner{src: string(data), line: 1}
	doc := model.NewDocument(model.FormatStrings)

	for {
		comment, err := s.skipSpace()
		if err != nil {
			return nil, err
		}
		if s.eof() {
			return doc, nil
		}
		line := s.line

		key, ok, err := s.token()
		if err != nil {
			return nil, err
		}
		if !ok {
			doc.Skipf("", line, "unexpected character %q", s.peek())
			s.resync()
			continue
		}

		if _, err := s.skipSpace(); err != nil {
			return nil, err
		}
		value := key
		switch s.peek() {
		case ';':
			// "key"; is shorthand for "key" = "key";
		case '=':
			s.next()
			if _, err := s.skipSpace(); err != nil {
				return nil, err
			}
			v, ok, err := s.token()
			if err != nil {
				return nil, err
			}
			if !ok {
				doc.Skipf(key, line, "missing value")
				s.resync()
				continue
			}
			value = v
			if _, err := s.skipSpace(); err != nil {
				return nil, err
			}
			if s.peek() != ';' {
				doc.Skipf(key, line, "missing ';'")
				s.resync()
				continue
			}
		default:
			doc.Skipf(key, line, "expected '=' after key")
			s.resync()
			continue
		}
		s.next() // ';'

		u := model.FromQualifiedKey(key, value)
		u.Description = comment
		doc.Add(u)
	}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode writes units as a .strings file, one entry per paragraph.
func Encode(units []model.TranslationUnit, _, _ string) []byte {
	var buf bytes.Buffer
	for i, u := range units {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if u.Description != "" {
			fmt.Fprintf(&buf, "/* %s */\n", commentSafe(u.Description))
		}
		fmt.Fprintf(&buf, "%s = %s;\n",
			escape.Quote(u.QualifiedKey(), escape.AppleStrings),
			escape.Quote(u.Text(), escape.AppleStrings))
	}
	return buf.Bytes()
}

func commentSafe(s string) string {
	return strings.ReplaceAll(s, "*/", "* /")
}
