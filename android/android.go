// Package android implements reading and writing of Android strings.xml
// translation files.
//
// Only <string> resources are translation units. <string-array> and
// <plurals> blocks, resources marked translatable="false" and other
// resource types are skipped and reported as warnings. An XML comment right
// before a <string> is its description.
//
// Values go through two layers of escaping: XML entities, then the aapt
// backslash escapes (\n, \', \", \@, \uXXXX, …). A value wrapped in double
// quotes has the quotes removed.
package android

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/transkit/escape"
	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/xmltext"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Decode parses Android strings.xml data.
func Decode(data []byte) (*model.Document, error) {
	dec := xmltext.NewDecoder(data)
	doc := model.NewDocument(model.FormatAndroid)

	var comment string
	inResources, seenRoot := false, false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xmltext.ParseError(model.FormatAndroid, dec, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !seenRoot {
				seenRoot = true
				if t.Name.Local != "resources" {
					return nil, model.ParseErrorAt(model.FormatAndroid, xmltext.Line(dec),
						fmt.Errorf("root element is <%s>, want <resources>", t.Name.Local))
				}
				inResources = true
				continue
			}
			if !inResources {
				continue
			}
			line := xmltext.Line(dec)
			if t.Name.Local != "string" {
				doc.Skipf(xmltext.Attr(t, "name"), line, "unsupported <%s> resource", t.Name.Local)
				if err := dec.Skip(); err != nil {
					return nil, xmltext.ParseError(model.FormatAndroid, dec, err)
				}
				comment = ""
				continue
			}
			if err := parseString(dec, t, doc, line, comment); err != nil {
				return nil, xmltext.ParseError(model.FormatAndroid, dec, err)
			}
			comment = ""

		case xml.Comment:
			if inResources {
				comment = strings.TrimSpace(string(t))
			}

		case xml.EndElement:
			if t.Name.Local == "resources" {
				inResources = false
			}
		}
	}
	if !seenRoot {
		return nil, model.NewParseError(model.FormatAndroid, fmt.Errorf("missing <resources> root"))
	}
	return doc, nil
}

// parseString parses a <string> element already opened.
func parseString(dec *xml.Decoder, elem xml.StartElement, doc *model.Document, line int, comment string) error {
	name := xmltext.Attr(elem, "name")
	inner, err := xmltext.ReadInner(dec)
	if err != nil {
		return err
	}
	switch {
	case name == "":
		doc.Skipf("", line, "<string> without name")
		return nil
	case strings.EqualFold(xmltext.Attr(elem, "translatable"), "false"):
		doc.Skipf(name, line, "not translatable")
		return nil
	}

	u := model.FromQualifiedKey(name, unquoteValue(inner))
	u.Description = comment
	doc.Add(u)
	return nil
}

// unquoteValue removes Android's whitespace-preserving double quotes and
// resolves backslash escapes.
func unquoteValue(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && !strings.HasSuffix(s, `\"`) {
		s = s[1 : len(s)-1]
	}
	return escape.Unescape(s, escape.Android)
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Encode writes units as a strings.xml resource file. Units with a namespace
// are named "namespace::key".
func Encode(units []model.TranslationUnit, _, _ string) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources>\n")
	for _, u := range units {
		if u.Description != "" {
			fmt.Fprintf(&b, "    <!-- %s -->\n", xmltext.Comment(u.Description))
		}
		fmt.Fprintf(&b, "    <string name=\"%s\">%s</string>\n",
			xmltext.Text(u.QualifiedKey()), xmltext.Text(escape.Escape(u.Text(), escape.Android)))
	}
	b.WriteString("</resources>\n")
	return []byte(b.String())
}
