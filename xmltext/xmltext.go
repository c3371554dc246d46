// Package xmltext holds the encoding/xml helpers shared by the XML-based
// codecs (XLIFF, Android, RESX, stringsdict).
package xmltext

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/minios-linux/transkit/escape"
	"github.com/minios-linux/transkit/model"
)

// NewDecoder returns a strict decoder over data that also accepts the HTML
// named entities (&nbsp; and friends) common in hand-edited resources.
func NewDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	return dec
}

// ReadInner reads the content of the element whose start tag was just
// consumed, up to and including its end tag. Character data (CDATA
// included) is returned unescaped; inline child elements are kept as
// markup; comments and processing instructions are dropped.
func ReadInner(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
			b.WriteString("<")
			b.WriteString(t.Name.Local)
			for _, attr := range t.Attr {
				b.WriteString(" ")
				b.WriteString(attr.Name.Local)
				b.WriteString(`="`)
				b.WriteString(escape.Escape(attr.Value, escape.XML))
				b.WriteString(`"`)
			}
			b.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				b.WriteString("</")
				b.WriteString(t.Name.Local)
				b.WriteString(">")
			}
		}
	}
	return b.String(), nil
}

// Attr returns the value of the attribute with the given local name.
func Attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Line returns the decoder's current 1-based line.
func Line(dec *xml.Decoder) int {
	line, _ := dec.InputPos()
	return line
}

// ParseError converts a decoder error into a *model.ParseError for format.
// A premature end of input is reported as io.ErrUnexpectedEOF.
func ParseError(format model.FormatID, dec *xml.Decoder, err error) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return model.ParseErrorAt(format, se.Line, errors.New(se.Msg))
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	line, col := dec.InputPos()
	return &model.ParseError{Format: format, Line: line, Column: col, Offset: dec.InputOffset(), Err: err}
}

// Text writes s escaped for an XML text node or attribute value. Characters
// XML cannot carry at all become U+FFFD.
func Text(s string) string {
	return escape.Escape(Sanitize(s), escape.XML)
}

// Sanitize replaces the characters outside XML's Char production with
// U+FFFD.
func Sanitize(s string) string {
	if strings.IndexFunc(s, notXMLChar) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if notXMLChar(r) {
			return utf8.RuneError
		}
		return r
	}, s)
}

func notXMLChar(r rune) bool { return !escape.IsXMLChar(r) }

// Comment makes s safe inside an XML comment, which may not contain "--"
// or end with "-".
func Comment(s string) string {
	s = Sanitize(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	if strings.HasSuffix(s, "-") {
		s += " "
	}
	return s
}
