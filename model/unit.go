// Package model defines the canonical translation records shared by every
// codec in transkit.
//
// A TranslationUnit is one localizable string; a Document is an ordered list
// of units plus the languages and format they were read from or will be
// written to. Both are plain values: codecs build them per call and never
// keep references to them.
//
// Optional fields use the empty string for "absent". In particular an empty
// TargetText means the unit is untranslated, and an empty Namespace (or the
// literal "default") means the unit has no namespace.
package model

import "strings"

// DefaultNamespace is the bucket name used by nested formats (JSON, YAML) for
// units without a namespace.
const DefaultNamespace = "default"

// NamespaceSeparator joins a namespace (or gettext context) and a key in a
// qualified key, e.g. "menu::file".
const NamespaceSeparator = "::"

// TranslationUnit is one localizable string instance.
type TranslationUnit struct {
	// Key is the stable identifier, unique within (namespace, language).
	Key string
	// SourceText is the original-language text.
	SourceText string
	// TargetText is the translated text. Empty means untranslated.
	TargetText string
	// Namespace is a logical grouping of keys. Empty and "default" are
	// equivalent.
	Namespace string
	// Description is a translator-facing note.
	Description string
	// Context is a disambiguation tag distinct from the namespace.
	Context string
}

// Text returns the text an exporter writes for single-valued formats: the
// target text when present, the source text otherwise.
func (u TranslationUnit) Text() string {
	if u.TargetText != "" {
		return u.TargetText
	}
	return u.SourceText
}

// HasNamespace reports whether the unit carries a non-default namespace.
func (u TranslationUnit) HasNamespace() bool {
	return !IsDefaultNamespace(u.Namespace)
}

// NamespaceOrDefault returns the namespace, or DefaultNamespace when the unit
// has none.
func (u TranslationUnit) NamespaceOrDefault() string {
	if IsDefaultNamespace(u.Namespace) {
		return DefaultNamespace
	}
	return u.Namespace
}

// QualifiedKey returns "namespace::key" for units with a namespace and the
// bare key otherwise. A key that already starts with "namespace::" is
// returned unchanged, so gettext-style composite keys are not doubled.
func (u TranslationUnit) QualifiedKey() string {
	if !u.HasNamespace() {
		return u.Key
	}
	prefix := u.Namespace + NamespaceSeparator
	if strings.HasPrefix(u.Key, prefix) {
		return u.Key
	}
	return prefix + u.Key
}

// IsDefaultNamespace reports whether ns means "no namespace".
func IsDefaultNamespace(ns string) bool {
	return ns == "" || ns == DefaultNamespace
}

// SplitQualifiedKey splits s on the first "::". It returns an empty
// namespace when s has no separator or when either side would be empty.
func SplitQualifiedKey(s string) (namespace, key string) {
	idx := strings.Index(s, NamespaceSeparator)
	if idx <= 0 || idx+len(NamespaceSeparator) >= len(s) {
		return "", s
	}
	return s[:idx], s[idx+len(NamespaceSeparator):]
}

// FromQualifiedKey builds a unit from a possibly qualified key, as read by
// formats that fold namespaces into keys.
func FromQualifiedKey(qualified, text string) TranslationUnit {
	ns, key := SplitQualifiedKey(qualified)
	return TranslationUnit{Key: key, Namespace: ns, SourceText: text}
}
