package android

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/transkit/model"
)

// ---------------------------------------------------------------------------
// Decode tests
// ---------------------------------------------------------------------------

func TestDecode_BasicString(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name">My App</string>
    <string name="hello">Hello World</string>
</resources>`

	doc, err := Decode([]byte(xml))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := []model.TranslationUnit{
		{Key: "app_name", SourceText: "My App"},
		{Key: "hello", SourceText: "Hello World"},
	}
	if diff := cmp.Diff(want, doc.Units); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", doc.Warnings)
	}
}

func TestDecode_SkipsNonTranslatableArraysAndPlurals(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name" translatable="false">MyApp</string>
    <string-array name="planets">
        <item>Mercury</item>
    </string-array>
    <plurals name="songs_found">
        <item quantity="one">%d song found.</item>
        <item quantity="other">%d songs found.</item>
    </plurals>
    <color name="accent">#ff0000</color>
    <string>nameless</string>
    <string name="greeting">Hello</string>
</resources>`

	doc, err := Decode([]byte(xml))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(doc.Units) != 1 || doc.Units[0].Key != "greeting" {
		t.Fatalf("units = %#v, want only greeting", doc.Units)
	}
	var keys []string
	for _, w := range doc.Warnings {
		keys = append(keys, w.Key)
	}
	if diff := cmp.Diff([]string{"app_name", "planets", "songs_found", "accent", ""}, keys); diff != "" {
		t.Errorf("warning keys mismatch (-want +got):\n%s", diff)
	}
	if doc.Warnings[1].Line != 4 {
		t.Errorf("planets warning line = %d, want 4", doc.Warnings[1].Line)
	}
}

func TestDecode_CommentBecomesDescription(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- Section header -->
    <string name="foo">Foo</string>
    <string name="bar">Bar</string>
</resources>`

	doc, err := Decode([]byte(xml))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if doc.Units[0].Description != "Section header" {
		t.Errorf("foo description = %q", doc.Units[0].Description)
	}
	if doc.Units[1].Description != "" {
		t.Errorf("bar description = %q, want empty", doc.Units[1].Description)
	}
}

func TestDecode_Escapes(t *testing.T) {
	xml := `<resources>
    <string name="apos">Don\'t stop</string>
    <string name="newline">Line1\nLine2\tTabbed</string>
    <string name="entities">Tom &amp; Jerry &lt;3 &#169;</string>
    <string name="quoted">"  spaced out  "</string>
    <string name="inner_quote">Say \"hi\"</string>
    <string name="at">\@string/other</string>
    <string name="unicode">\u00e9t\u00e9</string>
    <string name="cdata"><![CDATA[<b>bold</b> & raw]]></string>
    <string name="markup">Hello <b>World</b></string>
</resources>`

	doc, err := Decode([]byte(xml))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := map[string]string{
		"apos":        "Don't stop",
		"newline":     "Line1\nLine2\tTabbed",
		"entities":    "Tom & Jerry <3 ©",
		"quoted":      "  spaced out  ",
		"inner_quote": `Say "hi"`,
		"at":          "@string/other",
		"unicode":     "été",
		"cdata":       "<b>bold</b> & raw",
		"markup":      "Hello <b>World</b>",
	}
	if len(doc.Units) != len(want) {
		t.Fatalf("units = %d, want %d", len(doc.Units), len(want))
	}
	for _, u := range doc.Units {
		if u.SourceText != want[u.Key] {
			t.Errorf("%s: got %q, want %q", u.Key, u.SourceText, want[u.Key])
		}
	}
}

func TestDecode_StructuralErrors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":      "",
		"wrong root": `<root><string name="a">b</string></root>`,
		"unclosed":   `<resources><string name="a">b`,
		"mismatched": `<resources><string name="a">b</resources>`,
	} {
		_, err := Decode([]byte(input))
		var pe *model.ParseError
		if !errors.As(err, &pe) || pe.Format != model.FormatAndroid {
			t.Errorf("%s: err = %v, want android *model.ParseError", name, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Encode tests
// ---------------------------------------------------------------------------

func TestEncode_EscapesValues(t *testing.T) {
	units := []model.TranslationUnit{
		{Key: "apos", SourceText: "Don't <stop> & go", Description: "a -- b"},
		{Key: "ref", SourceText: "@string/x"},
		{Key: "file", Namespace: "menu", SourceText: "File", TargetText: "Datei\n"},
	}
	got := string(Encode(units, "en", "de"))
	for _, want := range []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		"    <!-- a - - b -->\n",
		`<string name="apos">Don\&apos;t &lt;stop&gt; &amp; go</string>`,
		`<string name="ref">\@string/x</string>`,
		`<string name="menu::file">Datei\n</string>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	units := []model.TranslationUnit{
		{Key: "a", SourceText: `He said "it's" \ fine`, Description: "note"},
		{Key: "b", Namespace: "ns", SourceText: "  lead and trail  "},
		{Key: "c", SourceText: "?attr and <html>"},
		{Key: "d", SourceText: "multi\nline\ttab"},
	}
	doc, err := Decode(Encode(units, "en", "en"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(units, doc.Units); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
