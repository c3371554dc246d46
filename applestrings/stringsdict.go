package applestrings

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/xmltext"
)

// Keys of the .stringsdict vocabulary.
const (
	FormatKey       = "NSStringLocalizedFormatKey"
	SpecTypeKey     = "NSStringFormatSpecTypeKey"
	ValueTypeKey    = "NSStringFormatValueTypeKey"
	PluralRuleType  = "NSStringPluralRuleType"
	defaultVariable = "value"
)

// Categories lists the CLDR plural categories in canonical order.
var Categories = []string{"zero", "one", "two", "few", "many", "other"}

// IsCategory reports whether s is a CLDR plural category.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if s == c {
			return true
		}
	}
	return false
}

// SplitCategory splits "key:category" into its base key and category. ok is
// false when key does not end in a plural category.
func SplitCategory(key string) (base, category string, ok bool) {
	idx := strings.LastIndexByte(key, ':')
	if idx <= 0 || !IsCategory(key[idx+1:]) {
		return key, "", false
	}
	return key[:idx], key[idx+1:], true
}

// ---------------------------------------------------------------------------
// Plist model
// ---------------------------------------------------------------------------

// plistValue is a plist node. Only strings and dictionaries are kept;
// other node types are recorded by element name.
type plistValue struct {
	str   string
	dict  *plistDict
	other string
}

// plistDict keeps the keys of a <dict> in document order.
type plistDict struct {
	keys     []string
	values   []plistValue
	comments []string
	lines    []int
}

func (d *plistDict) get(key string) (plistValue, bool) {
	for i, k := range d.keys {
		if k == key {
			return d.values[i], true
		}
	}
	return plistValue{}, false
}

// readDict reads the members of a <dict> whose start tag was consumed.
func readDict(dec *xml.Decoder) (*plistDict, error) {
	d := &plistDict{}
	var comment, key string
	var haveKey bool
	line := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.Comment:
			comment = strings.TrimSpace(string(t))
		case xml.StartElement:
			if t.Name.Local == "key" {
				if haveKey {
					return nil, fmt.Errorf("<key> %q has no value", key)
				}
				line = xmltext.Line(dec)
				if key, err = xmltext.ReadInner(dec); err != nil {
					return nil, err
				}
				haveKey = true
				continue
			}
			if !haveKey {
				return nil, fmt.Errorf("<%s> without a <key>", t.Name.Local)
			}
			v, err := readValue(dec, t)
			if err != nil {
				return nil, err
			}
			d.keys = append(d.keys, key)
			d.values = append(d.values, v)
			d.comments = append(d.comments, comment)
			d.lines = append(d.lines, line)
			comment, haveKey = "", false
		case xml.EndElement:
			if haveKey {
				return nil, fmt.Errorf("<key> %q has no value", key)
			}
			return d, nil
		}
	}
}

func readValue(dec *xml.Decoder, start xml.StartElement) (plistValue, error) {
	switch start.Name.Local {
	case "string":
		s, err := xmltext.ReadInner(dec)
		return plistValue{str: s}, err
	case "dict":
		d, err := readDict(dec)
		return plistValue{dict: d}, err
	}
	return plistValue{other: start.Name.Local}, dec.Skip()
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// DecodeDict parses a .stringsdict plist. An entry without plural variables
// becomes one unit holding its format string. Plural variables become one
// unit per category keyed "key:category", or "key:variable:category" when
// the entry has several variables.
func DecodeDict(data []byte) (*model.Document, error) {
	dec := xmltext.NewDecoder(data)
	root, err := plistRoot(dec)
	if err != nil {
		return nil, xmltext.ParseError(model.FormatStringsDict, dec, err)
	}

	doc := model.NewDocument(model.FormatStringsDict)
	for i, key := range root.keys {
		v, line, comment := root.values[i], root.lines[i], root.comments[i]
		switch {
		case v.dict != nil:
			decodeEntry(doc, key, v.dict, line, comment)
		case v.other == "":
			u := model.FromQualifiedKey(key, v.str)
			u.Description = comment
			doc.Add(u)
		default:
			doc.Skipf(key, line, "unsupported <%s> entry", v.other)
		}
	}
	return doc, nil
}

// plistRoot reads <plist><dict>…</dict></plist> up to the end of the
// document.
func plistRoot(dec *xml.Decoder) (*plistDict, error) {
	var root *plistDict
	inPlist := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if root == nil {
				return nil, errors.New("missing <plist><dict> root")
			}
			return root, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case !inPlist && start.Name.Local == "plist":
			inPlist = true
		case inPlist && root == nil && start.Name.Local == "dict":
			if root, err = readDict(dec); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected <%s>", start.Name.Local)
		}
	}
}

func decodeEntry(doc *model.Document, key string, entry *plistDict, line int, comment string) {
	var vars []int
	for i, v := range entry.values {
		if v.dict != nil {
			vars = append(vars, i)
		}
	}

	if len(vars) == 0 {
		format, ok := entry.get(FormatKey)
		if !ok || format.other != "" {
			doc.Skipf(key, line, "missing %s", FormatKey)
			return
		}
		u := model.FromQualifiedKey(key, format.str)
		u.Description = comment
		doc.Add(u)
		return
	}

	for _, i := range vars {
		name, rule := entry.keys[i], entry.values[i].dict
		for j, category := range rule.keys {
			if !IsCategory(category) || rule.values[j].dict != nil || rule.values[j].other != "" {
				continue
			}
			unitKey := key + ":" + category
			if len(vars) > 1 {
				unitKey = key + ":" + name + ":" + category
			}
			u := model.FromQualifiedKey(unitKey, rule.values[j].str)
			u.Description = comment
			doc.Add(u)
		}
	}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// dictEntry is one top-level key of an encoded .stringsdict.
type dictEntry struct {
	key         string
	description string
	format      string
	categories  []string
	forms       []string
}

// EncodeDict writes units as a .stringsdict plist. Units whose key ends in
// ":category" are grouped into one plural entry with a single "value"
// variable.
func EncodeDict(units []model.TranslationUnit, _, _ string) []byte {
	var entries []*dictEntry
	plurals := make(map[string]*dictEntry)
	for _, u := range units {
		key := u.QualifiedKey()
		base, category, ok := SplitCategory(key)
		if !ok {
			entries = append(entries, &dictEntry{key: key, description: u.Description, format: u.Text()})
			continue
		}
		e := plurals[base]
		if e == nil {
			e = &dictEntry{key: base, description: u.Description, format: "%#@" + defaultVariable + "@"}
			plurals[base] = e
			entries = append(entries, e)
		}
		e.categories = append(e.categories, category)
		e.forms = append(e.forms, u.Text())
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString("<plist version=\"1.0\">\n<dict>\n")
	for _, e := range entries {
		if e.description != "" {
			fmt.Fprintf(&b, "  <!-- %s -->\n", xmltext.Comment(e.description))
		}
		fmt.Fprintf(&b, "  <key>%s</key>\n", xmltext.Text(e.key))
		b.WriteString("  <dict>\n")
		fmt.Fprintf(&b, "    <key>%s</key>\n    <string>%s</string>\n", FormatKey, xmltext.Text(e.format))
		if len(e.categories) > 0 {
			fmt.Fprintf(&b, "    <key>%s</key>\n", defaultVariable)
			b.WriteString("    <dict>\n")
			fmt.Fprintf(&b, "      <key>%s</key>\n      <string>%s</string>\n", SpecTypeKey, PluralRuleType)
			fmt.Fprintf(&b, "      <key>%s</key>\n      <string>d</string>\n", ValueTypeKey)
			for i, c := range e.categories {
				fmt.Fprintf(&b, "      <key>%s</key>\n      <string>%s</string>\n", c, xmltext.Text(e.forms[i]))
			}
			b.WriteString("    </dict>\n")
		}
		b.WriteString("  </dict>\n")
	}
	b.WriteString("</dict>\n</plist>\n")
	return []byte(b.String())
}
