// Package csvfile implements reading and writing of CSV translation sheets.
//
// The header row names the columns. Key and Value are required (the names
// are case-sensitive); Namespace, Language, Description and Context are
// optional. Encode writes Key,Language,Namespace,Value with every data
// field quoted.
//
// Line breaks inside quoted fields are read as "\n", so a CRLF in a cell
// comes back as a bare LF.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/transkit/escape"
	"github.com/minios-linux/transkit/model"
)

// Column names.
const (
	ColKey         = "Key"
	ColValue       = "Value"
	ColNamespace   = "Namespace"
	ColLanguage    = "Language"
	ColDescription = "Description"
	ColContext     = "Context"
)

// Header is the header row written by Encode.
var Header = []string{ColKey, ColLanguage, ColNamespace, ColValue}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses a CSV sheet. Rows without a key or a value are skipped and
// reported as warnings.
func Decode(data []byte) (*model.Document, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, model.NewParseError(model.FormatCSV, errors.New("missing header row"))
	}
	if err != nil {
		return nil, csvParseError(err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	keyIdx, hasKey := cols[ColKey]
	valIdx, hasVal := cols[ColValue]
	if !hasKey || !hasVal {
		return nil, model.ParseErrorAt(model.FormatCSV, 1,
			fmt.Errorf("header must contain %q and %q columns, got %q", ColKey, ColValue, header))
	}

	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	doc := model.NewDocument(model.FormatCSV)
	for index := 0; ; index++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		line, _ := r.FieldPos(0)

		var key, value string
		if keyIdx < len(rec) {
			key = rec[keyIdx]
		}
		if valIdx < len(rec) {
			value = rec[valIdx]
		}
		switch {
		case key == "":
			doc.Skip(model.SkipReason{Line: line, Index: index, Reason: "missing Key"})
			continue
		case value == "":
			doc.Skip(model.SkipReason{Key: key, Line: line, Index: index, Reason: "missing Value"})
			continue
		}

		if lang := field(rec, ColLanguage); lang != "" && doc.TargetLanguage == "" {
			doc.TargetLanguage = lang
		}
		ns := field(rec, ColNamespace)
		if model.IsDefaultNamespace(ns) {
			ns = ""
		}
		doc.Add(model.TranslationUnit{
			Key:         key,
			SourceText:  value,
			Namespace:   ns,
			Description: field(rec, ColDescription),
			Context:     field(rec, ColContext),
		})
	}
	return doc, nil
}

func csvParseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &model.ParseError{Format: model.FormatCSV, Line: pe.Line, Column: pe.Column, Err: pe.Err}
	}
	return model.NewParseError(model.FormatCSV, err)
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encode writes units with the Key,Language,Namespace,Value header. The
// Language column holds the target language, falling back to the source.
func Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	lang := targetLang
	if lang == "" {
		lang = sourceLang
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header, ","))
	buf.WriteString("\n")
	for _, u := range units {
		ns := ""
		if u.HasNamespace() {
			ns = u.Namespace
		}
		fields := []string{u.Key, lang, ns, u.Text()}
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(escape.Quote(f, escape.CSV))
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}
