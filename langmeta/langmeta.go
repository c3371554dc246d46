// Package langmeta resolves language codes to display metadata (native
// names and emoji flags) for CLI output, and validates the codes found in
// configuration and translation files.
package langmeta

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Code is the canonical BCP 47 tag, or the input when it is not one.
	Code string
	// Name is the language's name in itself ("Deutsch", "français (Canada)").
	Name string
	// EnglishName is the English name ("German", "Canadian French").
	EnglishName string
	// Flag is the emoji flag of the language's region, if it has one.
	Flag string
}

// Normalize returns the canonical BCP 47 form of a language code, accepting
// POSIX-style underscores: "pt_br" becomes "pt-BR".
func Normalize(code string) (string, error) {
	tag, err := parse(code)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}

// Valid reports whether code is a known language tag.
func Valid(code string) bool {
	_, err := parse(code)
	return err == nil
}

func parse(code string) (language.Tag, error) {
	s := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if s == "" {
		return language.Und, fmt.Errorf("empty language code")
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("language code %q: %w", code, err)
	}
	return tag, nil
}

// Resolve returns best-effort metadata for a language code. Unknown codes
// come back with the input as Name and no flag.
func Resolve(code string) Meta {
	tag, err := parse(code)
	if err != nil {
		return Meta{Code: code, Name: code}
	}
	m := Meta{
		Code:        tag.String(),
		Name:        display.Self.Name(tag),
		EnglishName: display.English.Tags().Name(tag),
		Flag:        flag(tag),
	}
	if m.Name == "" {
		m.Name = m.Code
	}
	return m
}

// flag builds the regional-indicator pair for the tag's region, inferring
// the most likely region when the tag has none ("ja" → JP).
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No || !region.IsCountry() {
		return ""
	}
	code := region.String()
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range code {
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}
