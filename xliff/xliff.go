// Package xliff implements reading and writing of XLIFF 1.2 and 2.0
// bilingual translation files.
//
// Decoding auto-detects the version from <xliff version>, defaulting to 1.2,
// and accepts units at any depth. Namespaces and contexts travel in a
// <context-group> (1.2) or <mda:metadata> block (2.0) using the x-namespace
// and x-context types.
package xliff

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/xmltext"
)

// Versions written by Encode and EncodeV2.
const (
	Version12 = "1.2"
	Version20 = "2.0"
)

// Metadata types carrying TranslationUnit fields that XLIFF has no element
// for.
const (
	TypeNamespace = "x-namespace"
	TypeContext   = "x-context"
)

const (
	ns12    = "urn:oasis:names:tc:xliff:document:1.2"
	ns20    = "urn:oasis:names:tc:xliff:document:2.0"
	nsMeta  = "urn:oasis:names:tc:xliff:metadata:2.0"
	ownerID = "transkit"
)

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// unit collects the fields of one trans-unit or unit element.
type unit struct {
	id        string
	line      int
	source    strings.Builder
	target    strings.Builder
	notes     []string
	namespace string
	context   string
}

// Decode parses an XLIFF 1.2 or 2.0 document.
func Decode(data []byte) (*model.Document, error) {
	dec := xmltext.NewDecoder(data)
	doc := model.NewDocument(model.FormatXLIFF)

	root, err := rootElement(dec)
	if err != nil {
		return nil, err
	}
	if root.Name.Local != "xliff" {
		return nil, model.ParseErrorAt(model.FormatXLIFF, xmltext.Line(dec),
			fmt.Errorf("root element is <%s>, want <xliff>", root.Name.Local))
	}
	version := xmltext.Attr(root, "version")
	if version == "" {
		version = Version12
	}
	if strings.HasPrefix(version, "2") {
		doc.Format = model.FormatXLIFF2
	}
	doc.SourceLanguage = xmltext.Attr(root, "srcLang")
	doc.TargetLanguage = xmltext.Attr(root, "trgLang")

	// groups holds the resname of every open <group>; the innermost
	// non-empty one is the namespace of units without explicit metadata.
	var groups []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xmltext.ParseError(model.FormatXLIFF, dec, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "file":
				if doc.SourceLanguage == "" {
					doc.SourceLanguage = xmltext.Attr(t, "source-language")
				}
				if doc.TargetLanguage == "" {
					doc.TargetLanguage = xmltext.Attr(t, "target-language")
				}
			case "group":
				name := xmltext.Attr(t, "resname")
				if name == "" {
					name = xmltext.Attr(t, "name")
				}
				groups = append(groups, name)
			case "trans-unit", "unit":
				u, err := readUnit(dec, t)
				if err != nil {
					return nil, xmltext.ParseError(model.FormatXLIFF, dec, err)
				}
				if u.namespace == "" {
					u.namespace = innermost(groups)
				}
				addUnit(doc, u)
			}
		case xml.EndElement:
			if t.Name.Local == "group" && len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
		}
	}
	return doc, nil
}

// rootElement returns the first start element, skipping the prolog.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				err = errors.New("no root element")
			}
			return xml.StartElement{}, xmltext.ParseError(model.FormatXLIFF, dec, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// readUnit consumes a trans-unit (1.2) or unit (2.0) element. Multiple
// segments are concatenated.
func readUnit(dec *xml.Decoder, start xml.StartElement) (*unit, error) {
	u := &unit{id: xmltext.Attr(start, "id"), line: xmltext.Line(dec)}
	if u.id == "" {
		u.id = xmltext.Attr(start, "resname")
	}
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "source":
				s, err := xmltext.ReadInner(dec)
				if err != nil {
					return nil, err
				}
				u.source.WriteString(s)
			case "target":
				s, err := xmltext.ReadInner(dec)
				if err != nil {
					return nil, err
				}
				u.target.WriteString(s)
			case "note":
				s, err := xmltext.ReadInner(dec)
				if err != nil {
					return nil, err
				}
				u.notes = append(u.notes, s)
			case "context", "meta":
				typ := xmltext.Attr(t, "context-type")
				if typ == "" {
					typ = xmltext.Attr(t, "type")
				}
				s, err := xmltext.ReadInner(dec)
				if err != nil {
					return nil, err
				}
				switch typ {
				case TypeNamespace:
					u.namespace = s
				case TypeContext:
					u.context = s
				}
			case "alt-trans", "match":
				// Suggestions carry their own source and target.
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return u, nil
}

func addUnit(doc *model.Document, u *unit) {
	if u.id == "" {
		doc.Skipf("", u.line, "unit without id")
		return
	}
	ns := u.namespace
	if model.IsDefaultNamespace(ns) {
		ns = ""
	}
	doc.Add(model.TranslationUnit{
		Key:         u.id,
		SourceText:  u.source.String(),
		TargetText:  u.target.String(),
		Namespace:   ns,
		Description: strings.Join(u.notes, "\n"),
		Context:     u.context,
	})
}

func innermost(groups []string) string {
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i] != "" {
			return groups[i]
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode writes units as an XLIFF 1.2 document.
func Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	sourceLang, targetLang = languages(sourceLang, targetLang)

	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<xliff version=%q xmlns=%q>\n", Version12, ns12)
	fmt.Fprintf(&b, "  <file source-language=\"%s\" target-language=\"%s\" datatype=\"plaintext\" original=\"%s\">\n",
		xmltext.Text(sourceLang), xmltext.Text(targetLang), ownerID)
	b.WriteString("    <body>\n")
	for _, u := range units {
		fmt.Fprintf(&b, "      <trans-unit id=\"%[1]s\" resname=\"%[1]s\">\n", xmltext.Text(u.Key))
		fmt.Fprintf(&b, "        <source>%s</source>\n", xmltext.Text(u.SourceText))
		if u.TargetText != "" {
			fmt.Fprintf(&b, "        <target>%s</target>\n", xmltext.Text(u.TargetText))
		}
		if u.Description != "" {
			fmt.Fprintf(&b, "        <note>%s</note>\n", xmltext.Text(u.Description))
		}
		if u.HasNamespace() || u.Context != "" {
			fmt.Fprintf(&b, "        <context-group name=\"%s\" purpose=\"information\">\n", ownerID)
			if u.HasNamespace() {
				fmt.Fprintf(&b, "          <context context-type=\"%s\">%s</context>\n", TypeNamespace, xmltext.Text(u.Namespace))
			}
			if u.Context != "" {
				fmt.Fprintf(&b, "          <context context-type=\"%s\">%s</context>\n", TypeContext, xmltext.Text(u.Context))
			}
			b.WriteString("        </context-group>\n")
		}
		b.WriteString("      </trans-unit>\n")
	}
	b.WriteString("    </body>\n")
	b.WriteString("  </file>\n")
	b.WriteString("</xliff>\n")
	return []byte(b.String())
}

// EncodeV2 writes units as an XLIFF 2.0 document.
func EncodeV2(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	sourceLang, targetLang = languages(sourceLang, targetLang)

	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<xliff xmlns=%q xmlns:mda=%q version=%q srcLang=\"%s\" trgLang=\"%s\">\n",
		ns20, nsMeta, Version20, xmltext.Text(sourceLang), xmltext.Text(targetLang))
	fmt.Fprintf(&b, "  <file id=\"f1\" original=\"%s\">\n", ownerID)
	for _, u := range units {
		fmt.Fprintf(&b, "    <unit id=\"%s\">\n", xmltext.Text(u.Key))
		if u.HasNamespace() || u.Context != "" {
			b.WriteString("      <mda:metadata>\n")
			fmt.Fprintf(&b, "        <mda:metaGroup category=\"%s\">\n", ownerID)
			if u.HasNamespace() {
				fmt.Fprintf(&b, "          <mda:meta type=\"%s\">%s</mda:meta>\n", TypeNamespace, xmltext.Text(u.Namespace))
			}
			if u.Context != "" {
				fmt.Fprintf(&b, "          <mda:meta type=\"%s\">%s</mda:meta>\n", TypeContext, xmltext.Text(u.Context))
			}
			b.WriteString("        </mda:metaGroup>\n")
			b.WriteString("      </mda:metadata>\n")
		}
		if u.Description != "" {
			b.WriteString("      <notes>\n")
			fmt.Fprintf(&b, "        <note>%s</note>\n", xmltext.Text(u.Description))
			b.WriteString("      </notes>\n")
		}
		b.WriteString("      <segment>\n")
		fmt.Fprintf(&b, "        <source>%s</source>\n", xmltext.Text(u.SourceText))
		if u.TargetText != "" {
			fmt.Fprintf(&b, "        <target>%s</target>\n", xmltext.Text(u.TargetText))
		}
		b.WriteString("      </segment>\n")
		b.WriteString("    </unit>\n")
	}
	b.WriteString("  </file>\n")
	b.WriteString("</xliff>\n")
	return []byte(b.String())
}

func languages(sourceLang, targetLang string) (string, string) {
	if sourceLang == "" {
		sourceLang = model.DefaultLanguage
	}
	if targetLang == "" {
		targetLang = sourceLang
	}
	return sourceLang, targetLang
}
