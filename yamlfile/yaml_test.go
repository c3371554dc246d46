package yamlfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/transkit/model"
)

// ---------------------------------------------------------------------------
// Decode
// ---------------------------------------------------------------------------

func TestDecode_NamespacesAndNesting(t *testing.T) {
	data := []byte(`fr:
  greeting: Bonjour
  default:
    title: Titre
  nav:
    home: Accueil
    footer:
      about: "À propos"
`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.TargetLanguage != "fr" {
		t.Errorf("TargetLanguage = %q, want fr", doc.TargetLanguage)
	}
	want := []model.TranslationUnit{
		{Key: "greeting", SourceText: "Bonjour"},
		{Key: "title", SourceText: "Titre"},
		{Key: "home", Namespace: "nav", SourceText: "Accueil"},
		{Key: "footer.about", Namespace: "nav", SourceText: "À propos"},
	}
	if diff := cmp.Diff(want, doc.Units); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", doc.Warnings)
	}
}

func TestDecode_NonStringLeavesAreWarnings(t *testing.T) {
	data := []byte(`en:
  app:
    name: Demo
    count: 3
    enabled: true
    missing: ~
    list:
      - a
      - b
    quoted: "3"
de:
  app:
    name: Demo
`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []model.TranslationUnit{
		{Key: "name", Namespace: "app", SourceText: "Demo"},
		{Key: "quoted", Namespace: "app", SourceText: "3"},
	}
	if diff := cmp.Diff(want, doc.Units); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}
	var keys []string
	for _, w := range doc.Warnings {
		keys = append(keys, w.Key)
	}
	if diff := cmp.Diff([]string{"count", "enabled", "missing", "list", "de"}, keys); diff != "" {
		t.Fatalf("warning keys mismatch (-want +got):\n%s", diff)
	}
	if doc.Warnings[0].Line != 4 {
		t.Errorf("count warning line = %d, want 4", doc.Warnings[0].Line)
	}
}

func TestDecode_Aliases(t *testing.T) {
	data := []byte(`en:
  common:
    ok: &ok OK
  dialog:
    confirm: *ok
`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if u, ok := doc.Lookup("dialog::confirm"); !ok || u.SourceText != "OK" {
		t.Errorf("Lookup(dialog::confirm) = %+v, %v", u, ok)
	}
}

func TestDecode_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"tab indent": "en:\n\ta: b\n",
		"unclosed":   "en:\n  a: \"open\n",
		"sequence":   "- en\n- fr\n",
		"scalar":     "hello\n",
	} {
		_, err := Decode([]byte(input))
		var pe *model.ParseError
		if !errors.As(err, &pe) || pe.Format != model.FormatYAML {
			t.Errorf("%s: err = %v, want yaml *model.ParseError", name, err)
		}
	}
}

func TestDecode_ErrorCarriesLine(t *testing.T) {
	_, err := Decode([]byte("en:\n  a: b\n  c: [unclosed\n"))
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *model.ParseError", err)
	}
	if pe.Line == 0 {
		t.Errorf("Line = 0, want a position: %v", pe)
	}
}

func TestDecode_Empty(t *testing.T) {
	doc, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Units) != 0 || doc.Format != model.FormatYAML {
		t.Errorf("doc = %+v", doc)
	}
}

// ---------------------------------------------------------------------------
// Encode
// ---------------------------------------------------------------------------

func TestEncode_Layout(t *testing.T) {
	units := []model.TranslationUnit{
		{Key: "title", SourceText: "Title", TargetText: "Titre"},
		{Key: "file", Namespace: "menu", SourceText: "File"},
		{Key: "quit", Namespace: "default", SourceText: "Quit: now"},
	}
	want := `"fr":
  "default":
    "title": "Titre"
    "quit": "Quit: now"
  "menu":
    "file": "File"
`
	if diff := cmp.Diff(want, string(Encode(units, "en", "fr"))); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_LanguageFallback(t *testing.T) {
	if got := string(Encode(nil, "", "")); got != "\"en\": {}\n" {
		t.Errorf("empty = %q", got)
	}
	got := string(Encode([]model.TranslationUnit{{Key: "a", SourceText: "b"}}, "de", ""))
	if !strings.HasPrefix(got, "\"de\":\n") {
		t.Errorf("source language not used:\n%s", got)
	}
}

func TestRoundTrip(t *testing.T) {
	units := []model.TranslationUnit{
		{Key: "yes", SourceText: "yes"},
		{Key: "num", SourceText: "42"},
		{Key: "multi", Namespace: "ns", SourceText: "line one\nline \"two\"\ttab"},
		{Key: "a.b", Namespace: "ns", SourceText: "dotted key", TargetText: "clé pointée"},
		{Key: "sym", Namespace: "ns", SourceText: "#: not a comment - & * ! % @ `"},
		{Key: "ctx::id", Namespace: "ctx", SourceText: "composite"},
	}
	doc, err := Decode(Encode(units, "en", "fr"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Units) != len(units) {
		t.Fatalf("units = %d, want %d", len(doc.Units), len(units))
	}
	for i, u := range units {
		got := doc.Units[i]
		if got.QualifiedKey() != u.QualifiedKey() || got.Text() != u.Text() {
			t.Errorf("unit %d = (%q, %q), want (%q, %q)", i, got.QualifiedKey(), got.Text(), u.QualifiedKey(), u.Text())
		}
	}
}
