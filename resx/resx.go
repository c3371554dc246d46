// Package resx implements reading and writing of .NET XML resource (.resx)
// files.
//
// String resources are <data name="key"><value>text</value></data>
// elements inside <root>, with an optional <comment> used as the
// description. Data elements with a type or mimetype attribute hold
// non-string resources (images, serialized objects) and are skipped.
package resx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/xmltext"
)

// Standard resheader values written by Encode.
const (
	ResMimeType = "text/microsoft-resx"
	Version     = "2.0"
	Reader      = "System.Resources.ResXResourceReader, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"
	Writer      = "System.Resources.ResXResourceWriter, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"
)

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses a .resx document.
func Decode(data []byte) (*model.Document, error) {
	dec := xmltext.NewDecoder(data)
	doc := model.NewDocument(model.FormatRESX)

	seenRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xmltext.ParseError(model.FormatRESX, dec, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !seenRoot {
			seenRoot = true
			if start.Name.Local != "root" {
				return nil, model.ParseErrorAt(model.FormatRESX, xmltext.Line(dec),
					fmt.Errorf("root element is <%s>, want <root>", start.Name.Local))
			}
			continue
		}

		switch start.Name.Local {
		case "data":
			if err := readData(dec, start, doc); err != nil {
				return nil, xmltext.ParseError(model.FormatRESX, dec, err)
			}
		default:
			// resheader, assembly, metadata and the embedded xsd:schema
			if err := dec.Skip(); err != nil {
				return nil, xmltext.ParseError(model.FormatRESX, dec, err)
			}
		}
	}
	if !seenRoot {
		return nil, model.NewParseError(model.FormatRESX, fmt.Errorf("missing <root> element"))
	}
	return doc, nil
}

// readData consumes a <data> element and adds its unit to doc.
func readData(dec *xml.Decoder, start xml.StartElement, doc *model.Document) error {
	line := xmltext.Line(dec)
	name := xmltext.Attr(start, "name")

	var value, comment string
	hasValue := false
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "value":
				if value, err = xmltext.ReadInner(dec); err != nil {
					return err
				}
				hasValue = true
			case "comment":
				if comment, err = xmltext.ReadInner(dec); err != nil {
					return err
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}

	switch {
	case name == "":
		doc.Skipf("", line, "<data> without name")
	case xmltext.Attr(start, "type") != "" || xmltext.Attr(start, "mimetype") != "":
		doc.Skipf(name, line, "non-string resource")
	case !hasValue:
		doc.Skipf(name, line, "missing <value>")
	default:
		u := model.FromQualifiedKey(name, value)
		u.Description = comment
		doc.Add(u)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode writes units as a .resx document with the standard resheader
// block. Units with a namespace are named "namespace::key".
func Encode(units []model.TranslationUnit, _, _ string) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<root>\n")
	for _, h := range [][2]string{
		{"resmimetype", ResMimeType},
		{"version", Version},
		{"reader", Reader},
		{"writer", Writer},
	} {
		fmt.Fprintf(&b, "  <resheader name=\"%s\">\n    <value>%s</value>\n  </resheader>\n", h[0], xmltext.Text(h[1]))
	}
	for _, u := range units {
		fmt.Fprintf(&b, "  <data name=\"%s\" xml:space=\"preserve\">\n", xmltext.Text(u.QualifiedKey()))
		fmt.Fprintf(&b, "    <value>%s</value>\n", xmltext.Text(u.Text()))
		if u.Description != "" {
			fmt.Fprintf(&b, "    <comment>%s</comment>\n", xmltext.Text(u.Description))
		}
		b.WriteString("  </data>\n")
	}
	b.WriteString("</root>\n")
	return []byte(b.String())
}
