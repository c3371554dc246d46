// Package arbfile implements reading and writing of Flutter ARB (Application
// Resource Bundle) files.
//
// ARB files are JSON files with a specific structure:
//
//   - "@@locale" holds the BCP-47 language code (e.g. "en", "ru").
//   - Keys starting with "@" are metadata, never translatable. "@key"
//     objects describe the sibling "key": its description (or meaning) and
//     context.
//   - All other string values are translatable.
//
// ARB has no namespaces, so units with one are written with a
// "namespace::key" key and split back on decode.
package arbfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minios-linux/transkit/model"
)

// Reserved keys.
const (
	KeyLocale       = "@@locale"
	KeyLastModified = "@@last_modified"
)

// meta is the subset of an "@key" metadata object transkit understands.
type meta struct {
	Description string `json:"description"`
	Meaning     string `json:"meaning"`
	Context     string `json:"context"`
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Decode parses ARB content. Key order from the file is preserved, and
// metadata may precede or follow the key it describes.
func Decode(data []byte) (*model.Document, error) {
	// Decode as ordered key-value using json.Decoder with token streaming
	// to preserve key order.
	dec := json.NewDecoder(bytes.NewReader(data))
	parseErr := func(err error) error {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		offset := dec.InputOffset()
		var se *json.SyntaxError
		if errors.As(err, &se) {
			offset = se.Offset
		}
		line, col := model.PositionAt(data, offset)
		return &model.ParseError{Format: model.FormatARB, Line: line, Column: col, Offset: offset, Err: err}
	}

	// Expect opening '{'
	tok, err := dec.Token()
	if err != nil {
		return nil, parseErr(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, parseErr(fmt.Errorf("expected '{', got %v", tok))
	}

	doc := model.NewDocument(model.FormatARB)
	metas := make(map[string]meta)
	var metaKeys []string
	metaLines := make(map[string]int)
	var keys []string
	values := make(map[string]string)

	for dec.More() {
		// Read key
		keyTok, err := dec.Token()
		if err != nil {
			return nil, parseErr(err)
		}
		key := keyTok.(string) // object keys are always strings

		// Read raw value
		var rawVal json.RawMessage
		if err := dec.Decode(&rawVal); err != nil {
			return nil, parseErr(err)
		}
		line, _ := model.PositionAt(data, dec.InputOffset())

		switch {
		case key == KeyLocale:
			var s string
			if json.Unmarshal(rawVal, &s) == nil {
				doc.TargetLanguage = s
				doc.SourceLanguage = s
			}
		case strings.HasPrefix(key, "@@"):
			// global metadata (@@last_modified, @@author, …)
		case strings.HasPrefix(key, "@"):
			var m meta
			if err := json.Unmarshal(rawVal, &m); err != nil {
				doc.Skipf(key, line, "metadata is not an object")
				continue
			}
			if _, dup := metas[key[1:]]; !dup {
				metaKeys = append(metaKeys, key[1:])
			}
			metas[key[1:]] = m
			metaLines[key[1:]] = line
		default:
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil {
				doc.Skipf(key, line, "non-string value")
				continue
			}
			if _, dup := values[key]; !dup {
				keys = append(keys, key)
			}
			values[key] = s
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, parseErr(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level object")
		}
		return nil, parseErr(err)
	}

	for _, key := range keys {
		u := model.FromQualifiedKey(key, values[key])
		if m, ok := metas[key]; ok {
			u.Description = m.Description
			if u.Description == "" {
				u.Description = m.Meaning
			}
			u.Context = m.Context
		}
		doc.Add(u)
	}
	for _, key := range metaKeys {
		if _, ok := values[key]; !ok {
			doc.Skipf("@"+key, metaLines[key], "metadata without a message")
		}
	}
	return doc, nil
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Encoder writes ARB files. The zero value is ready to use.
type Encoder struct {
	// Now stamps @@last_modified; nil means time.Now.
	Now func() time.Time
}

// Encode writes units as ARB using the current time for @@last_modified.
func Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	return Encoder{}.Encode(units, sourceLang, targetLang)
}

// Encode serialises units to JSON with 2-space indentation. @@locale (the
// target language, else the source) and @@last_modified are written first;
// "@key" metadata immediately follows its key.
func (enc Encoder) Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	now := time.Now
	if enc.Now != nil {
		now = enc.Now
	}
	locale := targetLang
	if locale == "" {
		locale = sourceLang
	}
	if locale == "" {
		locale = model.DefaultLanguage
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	writeMember(&buf, KeyLocale, locale)
	buf.WriteString(",\n")
	writeMember(&buf, KeyLastModified, now().UTC().Format(time.RFC3339))

	for _, u := range units {
		key := u.QualifiedKey()
		buf.WriteString(",\n")
		writeMember(&buf, key, u.Text())
		if u.Description == "" && u.Context == "" {
			continue
		}
		buf.WriteString(",\n  ")
		buf.Write(jsonString("@" + key))
		buf.WriteString(": {")
		sep := "\n    "
		if u.Description != "" {
			buf.WriteString(sep)
			buf.WriteString(`"description": `)
			buf.Write(jsonString(u.Description))
			sep = ",\n    "
		}
		if u.Context != "" {
			buf.WriteString(sep)
			buf.WriteString(`"context": `)
			buf.Write(jsonString(u.Context))
		}
		buf.WriteString("\n  }")
	}

	buf.WriteString("\n}\n")
	return buf.Bytes()
}

func writeMember(buf *bytes.Buffer, key, value string) {
	buf.WriteString("  ")
	buf.Write(jsonString(key))
	buf.WriteString(": ")
	buf.Write(jsonString(value))
}

func jsonString(s string) []byte {
	raw, _ := json.Marshal(s) // strings always marshal
	return raw
}
