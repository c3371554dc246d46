// Package jsonfile implements reading and writing of namespaced JSON
// translation files.
//
// Two layouts are accepted on input:
//
//	{"menu": {"file": "File"}, "title": "Title"}
//	[{"key": "file", "value": "File", "namespace": "menu"}]
//
// The first is what Encode writes: one object per namespace, with units
// without a namespace grouped under "default". Objects nested below the
// namespace level flatten to dot-joined keys. The second is the bulk-upload
// record array.
//
// Key order from the source file is preserved.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/minios-linux/transkit/model"
)

// ---------------------------------------------------------------------------
// Input shapes
// ---------------------------------------------------------------------------

// shape is the top-level layout of a JSON document, resolved once from its
// first token.
type shape interface {
	decode(r *reader) error
}

// nestedShape is {namespace: {key: value}}.
type nestedShape struct{}

// flatArrayShape is [{key, value, namespace?, description?}].
type flatArrayShape struct{}

// flatRecord is one element of a flatArrayShape document.
type flatRecord struct {
	Key         *string `json:"key"`
	Value       *string `json:"value"`
	Namespace   string  `json:"namespace"`
	Description string  `json:"description"`
	Context     string  `json:"context"`
}

// reader couples the token stream with the document being built.
type reader struct {
	data []byte
	dec  *json.Decoder
	doc  *model.Document
}

// Decode parses JSON translation data.
func Decode(data []byte) (*model.Document, error) {
	r := &reader{
		data: data,
		dec:  json.NewDecoder(bytes.NewReader(data)),
		doc:  model.NewDocument(model.FormatJSON),
	}

	s, err := r.resolveShape()
	if err != nil {
		return nil, err
	}
	if err := s.decode(r); err != nil {
		return nil, err
	}
	if _, err := r.dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, r.parseError(err)
	}
	return r.doc, nil
}

func (r *reader) resolveShape() (shape, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, r.parseError(err)
	}
	switch tok {
	case json.Delim('{'):
		return nestedShape{}, nil
	case json.Delim('['):
		return flatArrayShape{}, nil
	}
	return nil, r.parseError(fmt.Errorf("top-level value must be an object or an array, got %v", tok))
}

func (nestedShape) decode(r *reader) error {
	for r.dec.More() {
		key, err := r.key()
		if err != nil {
			return err
		}
		tok, err := r.dec.Token()
		if err != nil {
			return r.parseError(err)
		}
		switch v := tok.(type) {
		case string:
			r.doc.Add(model.TranslationUnit{Key: key, SourceText: v})
		case json.Delim:
			if v == '{' {
				ns := key
				if model.IsDefaultNamespace(ns) {
					ns = ""
				}
				if err := r.object(ns, ""); err != nil {
					return err
				}
				continue
			}
			r.skipf(key, "array value")
			if err := r.skipComposite(); err != nil {
				return err
			}
		default:
			r.skipf(key, "non-string value %v", v)
		}
	}
	return r.closing()
}

// object reads the members of a namespace object, flattening nested objects
// into prefix-joined keys.
func (r *reader) object(ns, prefix string) error {
	for r.dec.More() {
		key, err := r.key()
		if err != nil {
			return err
		}
		key = prefix + key
		tok, err := r.dec.Token()
		if err != nil {
			return r.parseError(err)
		}
		switch v := tok.(type) {
		case string:
			r.doc.Add(model.TranslationUnit{Key: key, Namespace: ns, SourceText: v})
		case json.Delim:
			if v == '{' {
				if err := r.object(ns, key+"."); err != nil {
					return err
				}
				continue
			}
			r.skipf(key, "array value")
			if err := r.skipComposite(); err != nil {
				return err
			}
		default:
			r.skipf(key, "non-string value %v", v)
		}
	}
	return r.closing()
}

func (flatArrayShape) decode(r *reader) error {
	for i := 0; r.dec.More(); i++ {
		var raw json.RawMessage
		if err := r.dec.Decode(&raw); err != nil {
			return r.parseError(err)
		}
		var rec flatRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			r.doc.Skip(model.SkipReason{Index: i, Reason: "record is not an object of strings"})
			continue
		}
		switch {
		case rec.Key == nil || *rec.Key == "":
			r.doc.Skip(model.SkipReason{Index: i, Reason: "missing key"})
			continue
		case rec.Value == nil:
			r.doc.Skip(model.SkipReason{Key: *rec.Key, Index: i, Reason: "missing value"})
			continue
		}
		ns := rec.Namespace
		if model.IsDefaultNamespace(ns) {
			ns = ""
		}
		r.doc.Add(model.TranslationUnit{
			Key:         *rec.Key,
			SourceText:  *rec.Value,
			Namespace:   ns,
			Description: rec.Description,
			Context:     rec.Context,
		})
	}
	return r.closing()
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (r *reader) key() (string, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return "", r.parseError(err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", r.parseError(fmt.Errorf("expected string key, got %v", tok))
	}
	return key, nil
}

// closing consumes the delimiter ending the current object or array.
func (r *reader) closing() error {
	if _, err := r.dec.Token(); err != nil {
		return r.parseError(err)
	}
	return nil
}

// skipComposite discards the rest of an object or array whose opening
// delimiter has already been read.
func (r *reader) skipComposite() error {
	for depth := 1; depth > 0; {
		tok, err := r.dec.Token()
		if err != nil {
			return r.parseError(err)
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
	return nil
}

func (r *reader) skipf(key, format string, args ...any) {
	line, _ := model.PositionAt(r.data, r.dec.InputOffset())
	r.doc.Skipf(key, line, format, args...)
}

func (r *reader) parseError(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	offset := r.dec.InputOffset()
	var se *json.SyntaxError
	if errors.As(err, &se) {
		offset = se.Offset
	}
	line, col := model.PositionAt(r.data, offset)
	return &model.ParseError{Format: model.FormatJSON, Line: line, Column: col, Offset: offset, Err: err}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode writes units as {namespace: {key: value}} with 2-space
// indentation. Namespaces and keys appear in first-seen order.
func Encode(units []model.TranslationUnit, _, _ string) []byte {
	var order []string
	groups := make(map[string][]model.TranslationUnit)
	for _, u := range units {
		ns := u.NamespaceOrDefault()
		if _, seen := groups[ns]; !seen {
			order = append(order, ns)
		}
		groups[ns] = append(groups[ns], u)
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, ns := range order {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(jsonString(ns))
		buf.WriteString(": {")
		for j, u := range groups[ns] {
			if j > 0 {
				buf.WriteString(",")
			}
			buf.WriteString("\n    ")
			buf.Write(jsonString(u.Key))
			buf.WriteString(": ")
			buf.Write(jsonString(u.Text()))
		}
		buf.WriteString("\n  }")
	}
	if len(order) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

// jsonString encodes s as a JSON string literal without HTML escaping.
func jsonString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
