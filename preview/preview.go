// Package preview renders decoded translation documents the way an
// application would see them at runtime: it loads units into a go-i18n
// bundle and resolves keys with template data and plural selection.
//
// Units keyed "key:category" (zero, one, two, few, many, other) are folded
// into a single plural message "key". Units with empty text are not loaded.
package preview

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/minios-linux/transkit/applestrings"
	"github.com/minios-linux/transkit/model"
)

// ErrNotFound is returned by Lookup for keys the catalog does not hold.
var ErrNotFound = errors.New("message not found")

// Catalog is a read-only view over one or more documents.
type Catalog struct {
	bundle *i18n.Bundle
	// plural records the message ids that carry plural forms, per language.
	plural map[language.Tag]map[string]bool
	langs  []language.Tag
}

// NewCatalog loads docs into a new catalog. Each document contributes its
// target language; the first document's source language is the fallback.
func NewCatalog(docs ...*model.Document) (*Catalog, error) {
	fallback := language.English
	if len(docs) > 0 {
		src, _ := docs[0].Languages()
		tag, err := language.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("source language %q: %w", src, err)
		}
		fallback = tag
	}

	c := &Catalog{
		bundle: i18n.NewBundle(fallback),
		plural: make(map[language.Tag]map[string]bool),
	}
	for _, doc := range docs {
		if err := c.Add(doc); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add loads the units of doc under its target language. Later documents
// override earlier ones for the same language and key.
func (c *Catalog) Add(doc *model.Document) error {
	_, lang := doc.Languages()
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("target language %q: %w", lang, err)
	}

	var (
		order    []string
		messages = make(map[string]*i18n.Message)
	)
	plural := c.plural[tag]
	if plural == nil {
		plural = make(map[string]bool)
		c.plural[tag] = plural
		c.langs = append(c.langs, tag)
	}
	for _, u := range doc.Units {
		text := u.Text()
		if text == "" {
			continue
		}
		id := u.QualifiedKey()
		base, category, isPlural := applestrings.SplitCategory(id)
		if isPlural {
			id = base
		}
		m := messages[id]
		if m == nil {
			m = &i18n.Message{ID: id, Description: u.Description}
			messages[id] = m
			order = append(order, id)
		}
		if !isPlural {
			m.Other = text
			continue
		}
		plural[id] = true
		setForm(m, category, text)
	}

	batch := make([]*i18n.Message, 0, len(order))
	for _, id := range order {
		batch = append(batch, messages[id])
	}
	if err := c.bundle.AddMessages(tag, batch...); err != nil {
		return fmt.Errorf("loading %s messages: %w", tag, err)
	}
	return nil
}

func setForm(m *i18n.Message, category, text string) {
	switch category {
	case "zero":
		m.Zero = text
	case "one":
		m.One = text
	case "two":
		m.Two = text
	case "few":
		m.Few = text
	case "many":
		m.Many = text
	default:
		m.Other = text
	}
}

// Languages returns the loaded languages as BCP 47 tags, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.langs))
	for i, tag := range c.langs {
		out[i] = tag.String()
	}
	sort.Strings(out)
	return out
}

// Bundle exposes the underlying go-i18n bundle.
func (c *Catalog) Bundle() *i18n.Bundle {
	return c.bundle
}

// Lookup resolves qualifiedKey for lang. count selects the plural form of
// plural messages and is ignored otherwise; data feeds the message
// template and may be nil, in which case plural messages see
// {{.PluralCount}}. Languages without the key fall back to the catalog's
// source language.
func (c *Catalog) Lookup(lang, qualifiedKey string, count int, data map[string]any) (string, error) {
	cfg := &i18n.LocalizeConfig{MessageID: qualifiedKey, TemplateData: data}
	if c.isPlural(qualifiedKey) {
		cfg.PluralCount = count
	}

	out, err := i18n.NewLocalizer(c.bundle, lang).Localize(cfg)
	var nf *i18n.MessageNotFoundErr
	switch {
	case err == nil:
		return out, nil
	case out != "":
		// Served from the fallback language, or from the "other" form of
		// a plural message missing the selected category.
		return out, nil
	case errors.As(err, &nf):
		return "", fmt.Errorf("%s (%s): %w", qualifiedKey, lang, ErrNotFound)
	}
	return "", fmt.Errorf("rendering %s (%s): %w", qualifiedKey, lang, err)
}

func (c *Catalog) isPlural(id string) bool {
	for _, ids := range c.plural {
		if ids[id] {
			return true
		}
	}
	return false
}
