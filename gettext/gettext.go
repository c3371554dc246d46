// Package gettext maps GNU gettext PO/POT catalogs onto transkit documents.
//
// The PO grammar itself lives in the pofile package. This package decides
// what an entry means as a translation unit:
//
//   - msgctxt and msgid compose the key "ctx::msgid"; the context is also
//     reported as the unit's namespace and context.
//   - msgid is the source text; msgstr (or msgstr[0], falling back to the
//     first non-empty plural form) is the target text. A fuzzy msgstr is a
//     draft and is dropped with a warning.
//   - "#." extracted comments are the description.
//   - The header's Language field is the target language and
//     X-Source-Language the source language.
package gettext

import (
	"errors"
	"strings"
	"time"

	"github.com/minios-linux/transkit/model"
	"github.com/minios-linux/transkit/pofile"
)

// Project is written as the Project-Id-Version of exported catalogs.
const Project = "transkit"

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Decode parses a PO or POT catalog.
func Decode(data []byte) (*model.Document, error) {
	f, err := pofile.ParseBytes(data)
	if err != nil {
		var se *pofile.SyntaxError
		if errors.As(err, &se) {
			return nil, model.ParseErrorAt(model.FormatGettext, se.Line, errors.New(se.Msg))
		}
		return nil, model.NewParseError(model.FormatGettext, err)
	}

	doc := model.NewDocument(model.FormatGettext)
	doc.TargetLanguage = f.HeaderField("Language")
	doc.SourceLanguage = f.HeaderField("X-Source-Language")

	for _, e := range f.Entries {
		switch {
		case e.Obsolete:
			doc.Skipf(e.MsgID, e.Line, "obsolete entry")
			continue
		case e.MsgID == "":
			doc.Skipf(e.MsgCtxt, e.Line, "empty msgid")
			continue
		}

		u := model.TranslationUnit{
			Key:         e.MsgID,
			SourceText:  e.MsgID,
			TargetText:  e.Translation(),
			Description: strings.Join(e.ExtractedComments, "\n"),
		}
		if e.MsgCtxt != "" {
			u.Key = e.MsgCtxt + model.NamespaceSeparator + e.MsgID
			u.Namespace = e.MsgCtxt
			u.Context = e.MsgCtxt
		}
		if e.IsFuzzy() && u.TargetText != "" {
			// A fuzzy msgstr is a draft; the unit stays, untranslated.
			doc.Skipf(u.Key, e.Line, "fuzzy translation ignored")
			u.TargetText = ""
		}
		doc.Add(u)
	}
	return doc, nil
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Encoder writes PO catalogs. The zero value is ready to use.
type Encoder struct {
	// Now stamps the creation and revision dates; nil means time.Now.
	Now func() time.Time
}

// Encode writes units as a PO catalog using the current time for the
// header dates.
func Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	return Encoder{}.Encode(units, sourceLang, targetLang)
}

// Encode writes units as a PO catalog. Units are grouped by context in
// first-seen order; msgstr carries the target text, falling back to the
// source text.
func (enc Encoder) Encode(units []model.TranslationUnit, sourceLang, targetLang string) []byte {
	now := time.Now
	if enc.Now != nil {
		now = enc.Now
	}
	lang := targetLang
	if lang == "" {
		lang = sourceLang
	}
	if lang == "" {
		lang = model.DefaultLanguage
	}

	f := pofile.NewFile()
	f.Header = pofile.MakeHeader(pofile.HeaderOptions{
		Project:        Project,
		Language:       lang,
		SourceLanguage: sourceLang,
		Now:            now(),
	})

	var order []string
	groups := make(map[string][]*pofile.Entry)
	for _, u := range units {
		ctx, id := messageID(u)
		e := &pofile.Entry{
			MsgCtxt: ctx,
			MsgID:   id,
			MsgStr:  u.Text(),
		}
		if u.Description != "" {
			e.ExtractedComments = []string{u.Description}
		}
		if _, seen := groups[ctx]; !seen {
			order = append(order, ctx)
		}
		groups[ctx] = append(groups[ctx], e)
	}
	for _, ctx := range order {
		f.Entries = append(f.Entries, groups[ctx]...)
	}
	return f.Marshal()
}

// messageID returns the msgctxt and msgid for u. A namespace becomes the
// context; without one, a "ctx::id" key is split.
func messageID(u model.TranslationUnit) (ctx, id string) {
	if u.HasNamespace() {
		return u.Namespace, strings.TrimPrefix(u.Key, u.Namespace+model.NamespaceSeparator)
	}
	return model.SplitQualifiedKey(u.Key)
}
