package model

import "fmt"

// DefaultLanguage is assumed when a format does not carry a language.
const DefaultLanguage = "en"

// SkipReason records an entry a decoder dropped instead of failing the whole
// document.
type SkipReason struct {
	// Key is the entry key, if one could be read.
	Key string
	// Line is the 1-based line of the entry, or 0 when unknown.
	Line int
	// Index is the 0-based record index, or -1 when unknown.
	Index int
	// Reason is a short human-readable explanation.
	Reason string
}

func (s SkipReason) String() string {
	where := ""
	switch {
	case s.Line > 0:
		where = fmt.Sprintf("line %d: ", s.Line)
	case s.Index >= 0:
		where = fmt.Sprintf("record %d: ", s.Index)
	}
	if s.Key != "" {
		return fmt.Sprintf("%s%q: %s", where, s.Key, s.Reason)
	}
	return where + s.Reason
}

// Document is a parsed or to-be-serialised translation file.
type Document struct {
	Format         FormatID
	SourceLanguage string
	TargetLanguage string
	// Units are kept in insertion order for deterministic re-export.
	Units []TranslationUnit
	// Warnings lists the entries that were skipped during decoding.
	Warnings []SkipReason
}

// NewDocument returns an empty document for format.
func NewDocument(format FormatID) *Document {
	return &Document{Format: format}
}

// Add appends u. Units with an empty key are recorded as skipped instead.
func (d *Document) Add(u TranslationUnit) {
	if u.Key == "" {
		d.Skip(SkipReason{Index: -1, Reason: ErrEmptyKey.Error()})
		return
	}
	d.Units = append(d.Units, u)
}

// Skip records a skipped entry.
func (d *Document) Skip(r SkipReason) {
	d.Warnings = append(d.Warnings, r)
}

// Skipf records a skipped entry with a formatted reason.
func (d *Document) Skipf(key string, line int, format string, args ...any) {
	d.Skip(SkipReason{Key: key, Line: line, Index: -1, Reason: fmt.Sprintf(format, args...)})
}

// Keys returns the qualified keys of all units in document order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.Units))
	for i, u := range d.Units {
		keys[i] = u.QualifiedKey()
	}
	return keys
}

// Lookup returns the first unit whose qualified key equals qualifiedKey.
func (d *Document) Lookup(qualifiedKey string) (TranslationUnit, bool) {
	for _, u := range d.Units {
		if u.QualifiedKey() == qualifiedKey {
			return u, true
		}
	}
	return TranslationUnit{}, false
}

// Languages returns the source and target languages, substituting
// DefaultLanguage for missing values.
func (d *Document) Languages() (source, target string) {
	source, target = d.SourceLanguage, d.TargetLanguage
	if source == "" {
		source = DefaultLanguage
	}
	if target == "" {
		target = source
	}
	return source, target
}
